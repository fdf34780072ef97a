package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/middleware"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository/mocks"
)

func rateLimitedRouter(stateRepo *mocks.StateRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RateLimit(stateRepo, 5, time.Second))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return router
}

func TestRateLimit_AllowsUnderLimit(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.AnythingOfType("string"), 5, time.Second).
		Return(false, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(stateRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	stateRepo.AssertExpectations(t)
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.AnythingOfType("string"), 5, time.Second).
		Return(true, nil).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(stateRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestRateLimit_FailsClosedOnBackendError(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.AnythingOfType("string"), 5, time.Second).
		Return(false, assert.AnError).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rateLimitedRouter(stateRepo).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
