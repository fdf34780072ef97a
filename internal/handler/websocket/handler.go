package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/hub"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

// WebSocketHandler upgrades campaign connections and registers them with the
// hub. Membership is verified before the upgrade; a non-member never gets a
// socket.
type WebSocketHandler struct {
	upgrader        websocket.Upgrader
	hub             *hub.Hub
	campaignService *service.CampaignService
}

func NewWebSocketHandler(h *hub.Hub, campaignService *service.CampaignService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if campaignService == nil {
		panic("CampaignService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: restrict origins once the frontend host is fixed
			return true
		},
	}

	return &WebSocketHandler{
		upgrader:        upgrader,
		hub:             h,
		campaignService: campaignService,
	}
}

// HandleConnection serves /ws/campaign/{campaignId}.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID := c.GetString("userID")
	userName := c.GetString("userName")
	if userID == "" {
		logrus.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	campaignID := c.Param("campaignId")
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "campaign_id": campaignID})

	// The Get runs the migration-on-read pass too, so a legacy campaign is
	// normalized before its first subscriber attaches.
	campaign, err := h.campaignService.Get(c.Request.Context(), campaignID, userID)
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			logCtx.WithError(err).Warn("WS Handler: Campaign not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		} else {
			logCtx.WithError(err).Error("WS Handler: Error validating campaign")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate campaign"})
		}
		return
	}
	if !campaign.IsMember(userID) {
		logCtx.Warn("WS Handler: User is not a campaign member")
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this campaign"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, campaignID, userID, userName)

	registerMsg := hub.HubMessage{
		Type:       "register",
		Client:     client,
		CampaignID: campaignID,
		UserID:     userID,
	}
	if !h.hub.QueueMessage(registerMsg) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}

	go client.Run()
	logCtx.Info("WS Handler: Client read/write pumps started")
}
