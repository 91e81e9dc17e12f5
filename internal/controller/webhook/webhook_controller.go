package webhook

import (
	"net/http"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type WebhookController struct {
	billingService service.BillingService
}

func NewWebhookController(billingService service.BillingService) *WebhookController {
	return &WebhookController{billingService: billingService}
}

// HandleBillingEvent godoc
// @Summary Billing provider webhook
// @Description Receives billing provider events. Each event id is applied at most once; redeliveries are acknowledged without side effects.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param request body dto.ProviderEventDTO true "Provider event"
// @Success 200 {object} dto.StatusResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed event payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /webhook/billing [post]
func (c *WebhookController) HandleBillingEvent(ctx *gin.Context) {
	var event dto.ProviderEventDTO
	if err := ctx.ShouldBindJSON(&event); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid event payload.", Details: []string{err.Error()}})
		return
	}

	message, err := c.billingService.HandleProviderEvent(event)
	if err != nil {
		log.Error().Err(err).Str("eventID", event.ID).Str("type", event.Type).Msg("HandleBillingEvent: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to process event", Details: []string{err.Error()}})
		return
	}

	ctx.JSON(http.StatusOK, dto.StatusResponse{Status: http.StatusOK, Message: message})
}
