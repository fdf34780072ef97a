package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/tasks"
)

// CampaignHandler serves the REST surface of campaigns and sessions. The live
// traffic runs over the campaign socket; these endpoints cover setup and the
// operations that make no sense mid-session.
type CampaignHandler struct {
	campaignService *service.CampaignService
	sessionService  *service.SessionService
	taskClient      *asynq.Client
}

func NewCampaignHandler(
	campaignService *service.CampaignService,
	sessionService *service.SessionService,
	taskClient *asynq.Client,
) *CampaignHandler {
	if campaignService == nil || sessionService == nil {
		panic("services cannot be nil for CampaignHandler")
	}
	if taskClient == nil {
		panic("asynq client cannot be nil for CampaignHandler")
	}
	return &CampaignHandler{
		campaignService: campaignService,
		sessionService:  sessionService,
		taskClient:      taskClient,
	}
}

type CreateCampaignRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	GameSystem string `json:"gameSystem" binding:"omitempty,max=50"`
	Theme      string `json:"theme" binding:"omitempty,max=50"`
	Public     bool   `json:"public"`
}

// Create makes a campaign with the caller as its director.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	userID := c.GetString("userID")
	userName := c.GetString("userName")

	campaign, err := h.campaignService.Create(c.Request.Context(), userID, userName,
		req.Name, req.GameSystem, req.Theme, req.Public)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, campaign)
}

// Get returns one campaign, upgrading legacy documents on the way out.
func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.campaignService.Get(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, campaign)
}

// List returns the caller's campaigns.
func (h *CampaignHandler) List(c *gin.Context) {
	campaigns, err := h.campaignService.ListForParticipant(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, campaigns)
}

// ListPublic returns the publicly listed campaigns. No auth required.
func (h *CampaignHandler) ListPublic(c *gin.Context) {
	campaigns, err := h.campaignService.ListPublic(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, campaigns)
}

type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Invite records a pending invite for an email address.
func (h *CampaignHandler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: a valid email is required")
		return
	}
	err := h.campaignService.InvitePlayer(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"), req.Email)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Invite recorded"})
}

type FearRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// IncrementFear adjusts the campaign fear counter.
func (h *CampaignHandler) IncrementFear(c *gin.Context) {
	var req FearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: delta is required")
		return
	}
	fear, err := h.campaignService.IncrementFear(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"), req.Delta)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"gmFear": fear})
}

// Delete removes a campaign and everything under it.
func (h *CampaignHandler) Delete(c *gin.Context) {
	err := h.campaignService.Delete(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Campaign deleted"})
}

type StartSessionRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// StartSession opens a new active play session.
func (h *CampaignHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: name is required")
		return
	}
	session, err := h.sessionService.Start(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"), req.Name)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, session)
}

// ListSessions returns a campaign's sessions.
func (h *CampaignHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.List(c.Request.Context(), c.Param("campaignId"), c.GetString("userID"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, sessions)
}

// FinalizeSession enqueues the finalize task. The summary compilation runs in
// the worker; clients observe completion through the sessions feed.
func (h *CampaignHandler) FinalizeSession(c *gin.Context) {
	campaignID := c.Param("campaignId")
	sessionID := c.Param("sessionId")
	userID := c.GetString("userID")

	task, err := tasks.NewSessionFinalizeTask(campaignID, sessionID, userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to build finalize task")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to schedule finalization")
		return
	}
	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task, asynq.Queue("critical"))
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to enqueue finalize task")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to schedule finalization")
		return
	}

	logrus.WithFields(logrus.Fields{"session_id": sessionID, "task_id": info.ID}).
		Info("Session finalize task enqueued")
	SuccessResponse(c, http.StatusAccepted, gin.H{"message": "Finalization scheduled", "taskId": info.ID})
}
