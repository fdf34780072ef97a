package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/tasks"
)

// SessionFinalizeHandler compiles a session's live notes into its summary in
// the background so the requesting connection does not wait on it.
type SessionFinalizeHandler struct {
	sessionService *service.SessionService
}

func NewSessionFinalizeHandler(sessionService *service.SessionService) *SessionFinalizeHandler {
	if sessionService == nil {
		panic("SessionService cannot be nil for SessionFinalizeHandler")
	}
	return &SessionFinalizeHandler{sessionService: sessionService}
}

// ProcessTask implements asynq.Handler.
func (h *SessionFinalizeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.SessionFinalizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// Malformed payloads never become valid; do not retry.
		return fmt.Errorf("unmarshal finalize payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"task_type":  t.Type(),
		"session_id": payload.SessionID,
	})

	finalizeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := h.sessionService.Finalize(finalizeCtx, payload.CampaignID, payload.SessionID, payload.RequestedBy)
	if err != nil {
		// A re-delivered task finds the session already finalized; that is
		// success, not a failure to retry.
		if errors.Is(err, service.ErrSessionFinalized) {
			logCtx.Info("Session already finalized, skipping")
			return nil
		}
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, service.ErrNotAuthorized) {
			logCtx.WithError(err).Warn("Finalize task rejected")
			return fmt.Errorf("finalize session: %v: %w", err, asynq.SkipRetry)
		}
		logCtx.WithError(err).Error("Finalize task failed")
		return err
	}

	logCtx.Info("Session finalized by worker")
	return nil
}

// PresencePruneHandler runs the periodic sweep deleting presence records past
// the offline threshold.
type PresencePruneHandler struct {
	presenceService *service.PresenceService
}

func NewPresencePruneHandler(presenceService *service.PresenceService) *PresencePruneHandler {
	if presenceService == nil {
		panic("PresenceService cannot be nil for PresencePruneHandler")
	}
	return &PresencePruneHandler{presenceService: presenceService}
}

// ProcessTask implements asynq.Handler.
func (h *PresencePruneHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := h.presenceService.Prune(pruneCtx, time.Now().UTC())
	if err != nil {
		logCtx.WithError(err).Error("Presence prune failed")
		return err
	}
	if removed > 0 {
		logCtx.WithField("removed", removed).Info("Pruned stale presence records")
	} else {
		logCtx.Debug("Presence prune found nothing to remove")
	}
	return nil
}
