package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArturTovmasyan/ministry-backend/config"
	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ChallengeTestController struct {
	challengeService   service.ChallengeTestService
	leaderboardService service.LeaderboardService
	cfg                *config.Config
}

func NewChallengeTestController(
	challengeService service.ChallengeTestService,
	leaderboardService service.LeaderboardService,
	cfg *config.Config,
) *ChallengeTestController {
	return &ChallengeTestController{
		challengeService:   challengeService,
		leaderboardService: leaderboardService,
		cfg:                cfg,
	}
}

// CreateChallenge godoc
// @Summary Create a challenge test between two students
// @Description Creates the challenge and both attempts, emails the competitor a confirmation link. One challenge per initiator per 24 hours.
// @Tags Challenge Tests
// @Accept json
// @Produce json
// @Param request body dto.ChallengeCreateDTO true "Challenge creation data"
// @Success 201 {object} dto.ChallengeCreatedDTO
// @Failure 400 {object} dto.ErrorResponse "Cooldown active or invalid participants"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenge-test/create [post]
func (c *ChallengeTestController) CreateChallenge(ctx *gin.Context) {
	var req dto.ChallengeCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data.", Details: []string{err.Error()}})
		return
	}

	result, err := c.challengeService.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrChallengeCooldown):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "You can challenge only 1 test in 24 hours."})
		case errors.Is(err, service.ErrNotFound):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data."})
		default:
			log.Error().Err(err).Msg("CreateChallenge: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create challenge test", Details: []string{err.Error()}})
		}
		return
	}

	log.Info().Uint("challengeTestID", result.ChallengeTestID).Msg("CreateChallenge: Challenge created")
	ctx.JSON(http.StatusCreated, result)
}

// ConfirmChallenge godoc
// @Summary Confirm a challenge via the emailed link
// @Description Consumes the single-use token, starts the challenge and redirects the competitor into the test. Invalid or replayed links redirect to the web app.
// @Tags Challenge Tests
// @Param assignTestId query int true "Competitor's assign test ID"
// @Param ct query string true "Confirmation token"
// @Success 302
// @Router /public/v1/confirm/challenge-test [get]
func (c *ChallengeTestController) ConfirmChallenge(ctx *gin.Context) {
	token := ctx.Query("ct")
	assignTestIDStr := ctx.Query("assignTestId")
	assignTestID, err := strconv.ParseUint(assignTestIDStr, 10, 32)
	if err != nil || token == "" {
		ctx.Redirect(http.StatusFound, c.cfg.Hosts.Web)
		return
	}

	startURL, err := c.challengeService.Confirm(token, uint(assignTestID))
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			log.Error().Err(err).Msg("ConfirmChallenge: Service error")
		}
		ctx.Redirect(http.StatusFound, c.cfg.Hosts.Web)
		return
	}

	ctx.Redirect(http.StatusFound, startURL)
}

// CheckTimeLimit godoc
// @Summary Check whether a challenge ran out of time
// @Description Refreshes the poll timestamp, or finishes and scores the challenge when both the staleness window and the 24h deadline have passed.
// @Tags Challenge Tests
// @Produce json
// @Param challenge_test_id path int true "Challenge Test ID"
// @Success 200 {object} dto.ChallengeTimeLimitDTO
// @Failure 404 {object} dto.ErrorResponse "Challenge not found or already finished"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenge-test/{challenge_test_id}/check-time-limit [get]
func (c *ChallengeTestController) CheckTimeLimit(ctx *gin.Context) {
	challengeTestID, err := strconv.ParseUint(ctx.Param("challenge_test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Challenge Test ID format"})
		return
	}

	result, err := c.challengeService.CheckTimeLimit(uint(challengeTestID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Challenge test not found"})
			return
		}
		log.Error().Err(err).Msg("CheckTimeLimit: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to check time limit", Details: []string{err.Error()}})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// GetRanking godoc
// @Summary Challenge leaderboard
// @Description Students ordered by their accumulated challenge ranking points.
// @Tags Challenge Tests
// @Produce json
// @Param limit query int false "Maximum rows to return (default 1000)"
// @Success 200 {array} dto.ChallengeRankDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /challenge-test/ranking [get]
func (c *ChallengeTestController) GetRanking(ctx *gin.Context) {
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		val, err := strconv.Atoi(limitStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid limit format"})
			return
		}
		limit = val
	}

	rows, err := c.leaderboardService.Ranking(limit)
	if err != nil {
		log.Error().Err(err).Msg("GetRanking: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to load ranking", Details: []string{err.Error()}})
		return
	}

	ranks := make([]dto.ChallengeRankDTO, 0, len(rows))
	for _, row := range rows {
		ranks = append(ranks, dto.ChallengeRankDTO{
			UserID:   row.StudentID,
			FullName: row.FullName,
			Country:  row.Country,
			Score:    row.Score,
		})
	}
	ctx.JSON(http.StatusOK, ranks)
}
