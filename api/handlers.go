package api

import (
	"errors"
	"net/http"
	"strconv"

	"luckywheel/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler holds the dependencies for the HTTP handlers
type Handler struct {
	drawService     service.DrawService
	claimService    service.ClaimService
	campaignService service.CampaignService
}

// NewHandler creates a new HTTP handler
func NewHandler(drawService service.DrawService, claimService service.ClaimService, campaignService service.CampaignService) *Handler {
	return &Handler{
		drawService:     drawService,
		claimService:    claimService,
		campaignService: campaignService,
	}
}

// RegisterRoutes registers all the application routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")
	api.GET("/campaigns/:id", h.GetCampaign)
	api.POST("/campaigns/:id/draw", h.Draw)
	api.POST("/claims/:code/redeem", h.RedeemClaim)
}

// Health reports service liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type drawRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type drawResponse struct {
	WinnerID            string `json:"winnerId"`
	PrizeID             int64  `json:"prizeId"`
	PrizeName           string `json:"prizeName"`
	PrizeDescription    string `json:"prizeDescription,omitempty"`
	PrizeValue          int64  `json:"prizeValue,omitempty"`
	ClaimCode           string `json:"claimCode"`
	ExpiresAt           string `json:"expiresAt"`
	WheelSpinDurationMs int64  `json:"wheelSpinDuration"`
}

// Draw runs the lottery draw for a campaign participant
func (h *Handler) Draw(c *gin.Context) {
	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_campaign_id", "campaign id must be numeric")
		return
	}

	var req drawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.drawService.Draw(c.Request.Context(), service.DrawRequest{
		Email:      req.Email,
		Name:       req.Name,
		CampaignID: campaignID,
		Metadata: map[string]any{
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		},
	})
	if err != nil {
		writeDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, drawResponse{
		WinnerID:            result.WinnerID.String(),
		PrizeID:             result.PrizeID,
		PrizeName:           result.PrizeName,
		PrizeDescription:    result.PrizeDescription,
		PrizeValue:          result.PrizeValue,
		ClaimCode:           result.ClaimCode,
		ExpiresAt:           result.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
		WheelSpinDurationMs: result.WheelSpinDurationMs,
	})
}

type prizeView struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Value       int64   `json:"value,omitempty"`
	Probability float64 `json:"probability"`
	Available   bool    `json:"available"`
}

// GetCampaign returns a campaign and its prize pool for the wheel UI
func (h *Handler) GetCampaign(c *gin.Context) {
	campaignID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_campaign_id", "campaign id must be numeric")
		return
	}

	campaign, prizes, err := h.campaignService.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		writeDrawError(c, err)
		return
	}

	views := make([]prizeView, 0, len(prizes))
	for _, prize := range prizes {
		views = append(views, prizeView{
			ID:          prize.ID,
			Name:        prize.Name,
			Description: prize.Description,
			Value:       prize.Value,
			Probability: prize.Probability,
			Available:   prize.IsAvailable(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       campaign.ID,
		"name":     campaign.Name,
		"startsAt": campaign.StartsAt,
		"endsAt":   campaign.EndsAt,
		"isActive": campaign.IsActive,
		"prizes":   views,
	})
}

// RedeemClaim redeems a winner's claim code
func (h *Handler) RedeemClaim(c *gin.Context) {
	winner, err := h.claimService.Redeem(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeDrawError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"winnerId":  winner.PublicID.String(),
		"prizeId":   winner.PrizeID,
		"status":    winner.Status,
		"claimedAt": winner.ClaimedAt,
	})
}

// writeDrawError maps the engine's typed errors to HTTP responses with stable
// machine-readable codes so UI layers can localize messages.
func writeDrawError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		writeError(c, http.StatusBadRequest, "invalid_email", "participant email is malformed")
	case errors.Is(err, service.ErrCampaignNotFound):
		writeError(c, http.StatusNotFound, "campaign_not_found", "campaign does not exist")
	case errors.Is(err, service.ErrCampaignNotActive):
		writeError(c, http.StatusForbidden, "campaign_not_active", "campaign is not currently running")
	case errors.Is(err, service.ErrStoreDrawsDisabled):
		writeError(c, http.StatusForbidden, "draws_disabled", "draws are disabled for this store")
	case errors.Is(err, service.ErrAlreadyParticipated):
		writeError(c, http.StatusConflict, "already_participated", "you have already played this campaign")
	case errors.Is(err, service.ErrNoPrizesAvailable):
		writeError(c, http.StatusGone, "no_prizes_available", "all prizes have been won")
	case errors.Is(err, service.ErrClaimNotFound):
		writeError(c, http.StatusNotFound, "claim_not_found", "claim code is unknown")
	case errors.Is(err, service.ErrClaimAlreadyRedeemed):
		writeError(c, http.StatusConflict, "claim_already_redeemed", "claim has already been redeemed")
	case errors.Is(err, service.ErrClaimExpired):
		writeError(c, http.StatusGone, "claim_expired", "claim has expired")
	default:
		var drawErr *service.DrawError
		if errors.As(err, &drawErr) {
			log.WithFields(log.Fields{
				"step":  drawErr.Step,
				"error": drawErr.Err,
			}).Error("Draw failed on persistence")
			// Compensation has already run by the time a DrawError surfaces,
			// so the caller can safely retry the whole draw.
			writeError(c, http.StatusServiceUnavailable, "draw_failed", "the draw could not be completed, please retry")
			return
		}
		log.WithError(err).Error("Unexpected error")
		writeError(c, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
