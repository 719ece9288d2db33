package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"crowdfund-platform/internal/middleware"
	"crowdfund-platform/internal/models"
)

type ProfileHandler struct {
	Fundraising FundraisingService
	Log         *zap.Logger
}

func NewProfileHandler(svc FundraisingService, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{Fundraising: svc, Log: log}
}

type profileView struct {
	User         models.PublicUser `json:"user"`
	Fundraisers  []fundraiserView  `json:"fundraisers"`
	Donations    []models.Donation `json:"donations"`
	TotalDonated int64             `json:"total_donated"`
}

func newProfileView(p *models.Profile, now time.Time) profileView {
	return profileView{
		User:         p.User,
		Fundraisers:  newFundraiserViews(p.Fundraisers, now),
		Donations:    p.Donations,
		TotalDonated: p.TotalDonated,
	}
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	h.respond(c, userID)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	h.respond(c, c.Param("id"))
}

func (h *ProfileHandler) respond(c *gin.Context, userID string) {
	profile, err := h.Fundraising.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, newProfileView(profile, h.Fundraising.Now()))
}
