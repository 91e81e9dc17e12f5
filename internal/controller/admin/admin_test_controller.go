package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminTestController struct {
	testService service.TestService
}

func NewAdminTestController(testService service.TestService) *AdminTestController {
	return &AdminTestController{testService: testService}
}

// CreateTest godoc
// @Summary (Admin) Create a test with questions and answers
// @Description Creates a test. Every question needs at least two answers with exactly one marked correct.
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param request body dto.TestCreateDTO true "Test creation data"
// @Success 201 {object} dto.TestResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data.", Details: []string{err.Error()}})
		return
	}

	result, err := c.testService.CreateTest(req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid post data.", Details: []string{err.Error()}})
			return
		}
		log.Error().Err(err).Msg("CreateTest: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create test", Details: []string{err.Error()}})
		return
	}

	log.Info().Uint("testID", result.ID).Str("name", result.Name).Msg("CreateTest: Test created")
	ctx.JSON(http.StatusCreated, result)
}

// GetAllTests godoc
// @Summary (Admin) List all tests
// @Tags Admin - Tests
// @Produce json
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [get]
func (c *AdminTestController) GetAllTests(ctx *gin.Context) {
	tests, err := c.testService.GetAllTests()
	if err != nil {
		log.Error().Err(err).Msg("GetAllTests: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve tests", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTestDetails godoc
// @Summary (Admin) Get one test with questions and answers
// @Tags Admin - Tests
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/{test_id} [get]
func (c *AdminTestController) GetTestDetails(ctx *gin.Context) {
	testID, err := strconv.ParseUint(ctx.Param("test_id"), 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid Test ID format"})
		return
	}

	test, err := c.testService.GetTestWithQuestions(uint(testID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Test not found"})
			return
		}
		log.Error().Err(err).Msg("GetTestDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve test", Details: []string{err.Error()}})
		return
	}

	ctx.JSON(http.StatusOK, test)
}
