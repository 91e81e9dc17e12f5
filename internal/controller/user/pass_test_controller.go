package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PassTestController struct {
	scoreService     service.ScoreService
	challengeService service.ChallengeTestService
}

func NewPassTestController(scoreService service.ScoreService, challengeService service.ChallengeTestService) *PassTestController {
	return &PassTestController{scoreService: scoreService, challengeService: challengeService}
}

// PassQuestion godoc
// @Summary Submit or edit an answer for one question
// @Description Records the answer and updates the attempt's score. For challenge attempts an expired challenge is auto-finished instead.
// @Tags Taking Tests
// @Accept json
// @Produce json
// @Param request body dto.PassQuestionDTO true "Answer submission"
// @Success 200 {object} dto.PassQuestionResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid submission"
// @Failure 404 {object} dto.ErrorResponse "Assign test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /pass-question [post]
func (c *PassTestController) PassQuestion(ctx *gin.Context) {
	var req dto.PassQuestionDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data.", Details: []string{err.Error()}})
		return
	}

	result, err := c.scoreService.SubmitAnswer(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Assign test not found"})
		case errors.Is(err, service.ErrValidation):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data.", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Msg("PassQuestion: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit answer", Details: []string{err.Error()}})
		}
		return
	}

	// Answers on an expired challenge attempt trigger the auto finish
	// instead of silently extending play past the deadline.
	if result.ChallengeTestID != nil && !result.AlreadyFinished {
		finished, err := c.challengeService.AutoFinishIfExpired(*result.ChallengeTestID)
		if err != nil {
			log.Error().Err(err).Uint("challengeTestID", *result.ChallengeTestID).Msg("PassQuestion: auto finish failed")
		} else if finished {
			result.Message = "Challenge test has been auto finished, because time is limited."
		}
	}

	ctx.JSON(http.StatusOK, result)
}

// FinishTest godoc
// @Summary Finish an attempt
// @Description Marks the attempt completed. A challenge attempt also reconciles the challenge once both sides have finished.
// @Tags Taking Tests
// @Produce json
// @Param assign_test_id path int true "Assign Test ID"
// @Success 200 {object} dto.FinishTestResultDTO
// @Failure 404 {object} dto.ErrorResponse "Assign test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assign-test/{assign_test_id}/finish [post]
func (c *PassTestController) FinishTest(ctx *gin.Context) {
	assignTestID, err := strconv.ParseUint(ctx.Param("assign_test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Assign Test ID format"})
		return
	}

	result, err := c.challengeService.FinishAssignTest(uint(assignTestID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Assign test not found"})
			return
		}
		log.Error().Err(err).Msg("FinishTest: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to finish test", Details: []string{err.Error()}})
		return
	}

	ctx.JSON(http.StatusOK, result)
}
