package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	authService     *service.AuthService
	campaignService *service.CampaignService
}

func NewAuthHandler(authService *service.AuthService, campaignService *service.CampaignService) *AuthHandler {
	if authService == nil || campaignService == nil {
		panic("services cannot be nil for AuthHandler")
	}
	return &AuthHandler{authService: authService, campaignService: campaignService}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	DisplayName string `json:"displayName" binding:"omitempty,max=100"`
	Password    string `json:"password" binding:"required,min=6"`
	Email       string `json:"email" binding:"omitempty,email"`
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Register: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	newUser, err := h.authService.Register(c.Request.Context(), req.Username, req.DisplayName, req.Password, req.Email)
	if err != nil {
		logCtx := logrus.WithFields(logrus.Fields{"username": req.Username, "email": req.Email})
		if errors.Is(err, service.ErrRegistrationFailed) || errors.Is(err, service.ErrValidation) {
			logCtx.WithError(err).Warn("Handler.Register: Registration rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logCtx.WithError(err).Error("Handler.Register: Internal error during registration")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed due to server error"})
		}
		return
	}

	logrus.WithField("user_id", newUser.ID).Info("Handler.Register: User registered successfully")
	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user_id": newUser.ID,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message          string   `json:"message"`
	Token            string   `json:"token"`
	UserID           string   `json:"userId"`
	DisplayName      string   `json:"displayName"`
	ClaimedCampaigns []string `json:"claimedCampaigns,omitempty"`
}

// Login handles user login. Pending campaign invites matching the user's email
// are converted into memberships before the response is sent, so the campaign
// list the client loads next is already current.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.Login: Invalid input format")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: username and password required"})
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		logCtx := logrus.WithField("username", req.Username)
		if errors.Is(err, service.ErrAuthenticationFailed) {
			logCtx.WithError(err).Warn("Handler.Login: Authentication failed")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		} else {
			logCtx.WithError(err).Error("Handler.Login: Internal error during login")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed due to server error"})
		}
		return
	}

	claimed, err := h.campaignService.ClaimInvites(c.Request.Context(), user)
	if err != nil {
		// Login itself succeeded; the invites remain claimable next time.
		logrus.WithError(err).WithField("user_id", user.ID).
			Warn("Handler.Login: Failed to claim pending invites")
	}

	logrus.WithField("username", req.Username).Info("Handler.Login: User logged in successfully")
	c.JSON(http.StatusOK, LoginResponse{
		Message:          "Login successful",
		Token:            token,
		UserID:           user.ID,
		DisplayName:      user.DisplayName,
		ClaimedCampaigns: claimed,
	})
}
