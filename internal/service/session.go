package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// SessionService manages play sessions and the finalize step that folds the
// live-note log into the session summary.
type SessionService struct {
	sessionRepo  repository.SessionRepository
	noteRepo     repository.LiveNoteRepository
	campaignRepo repository.CampaignRepository
	stateRepo    repository.StateRepository
}

func NewSessionService(
	sessionRepo repository.SessionRepository,
	noteRepo repository.LiveNoteRepository,
	campaignRepo repository.CampaignRepository,
	stateRepo repository.StateRepository,
) *SessionService {
	if sessionRepo == nil || noteRepo == nil || campaignRepo == nil || stateRepo == nil {
		panic("all repositories must be non-nil for SessionService")
	}
	return &SessionService{
		sessionRepo:  sessionRepo,
		noteRepo:     noteRepo,
		campaignRepo: campaignRepo,
		stateRepo:    stateRepo,
	}
}

// Start opens a new active session. Director only.
func (s *SessionService) Start(ctx context.Context, campaignID, viewerID, name string) (*domain.Session, error) {
	if name == "" {
		return nil, fmt.Errorf("start session: %w: name is required", ErrValidation)
	}
	if err := s.requireDirector(ctx, campaignID, viewerID); err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Name:       name,
		Status:     domain.SessionActive,
		StartedAt:  time.Now().UTC(),
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to start session")
		return nil, ErrInternalServer
	}

	s.publish(ctx, campaignID)
	logrus.WithFields(logrus.Fields{"campaign_id": campaignID, "session_id": session.ID}).
		Info("Session started")
	return session, nil
}

// List returns the campaign's sessions, newest first.
func (s *SessionService) List(ctx context.Context, campaignID, viewerID string) ([]domain.Session, error) {
	if _, err := s.memberRole(ctx, campaignID, viewerID); err != nil {
		return nil, err
	}
	sessions, err := s.sessionRepo.ListByCampaign(ctx, campaignID)
	if err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to list sessions")
		return nil, ErrInternalServer
	}
	return sessions, nil
}

// Finalize compiles the live-note log into the session summary, marks the
// session finalized and clears the log. Director only. Finalizing an already
// finalized session fails without touching anything, so the worker can retry
// the enqueue safely.
func (s *SessionService) Finalize(ctx context.Context, campaignID, sessionID, viewerID string) (*domain.Session, error) {
	logCtx := logrus.WithFields(logrus.Fields{"campaign_id": campaignID, "session_id": sessionID})

	if err := s.requireDirector(ctx, campaignID, viewerID); err != nil {
		return nil, err
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		logCtx.WithError(err).Error("Failed to load session for finalize")
		return nil, ErrInternalServer
	}
	if session.CampaignID != campaignID {
		return nil, ErrSessionNotFound
	}
	if session.Status == domain.SessionFinalized {
		return nil, ErrSessionFinalized
	}

	notes, err := s.noteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load live notes for finalize")
		return nil, ErrInternalServer
	}

	summary := domain.CompileSummary(notes)
	if summary != "" {
		if session.Summary != "" {
			session.Summary += "\n\n"
		}
		session.Summary += summary
	}
	now := time.Now().UTC()
	session.Status = domain.SessionFinalized
	session.EndedAt = &now

	if err := s.sessionRepo.Save(ctx, session); err != nil {
		logCtx.WithError(err).Error("Failed to save finalized session")
		return nil, ErrInternalServer
	}
	// The summary is durable now; a failed clear only leaves stale notes
	// behind, and the finalized status keeps them read-only.
	if err := s.noteRepo.ClearSession(ctx, sessionID); err != nil {
		logCtx.WithError(err).Warn("Failed to clear live notes after finalize")
	}

	s.publish(ctx, campaignID)
	s.publishNotes(ctx, campaignID, sessionID)
	logCtx.WithField("notes", len(notes)).Info("Session finalized")
	return session, nil
}

func (s *SessionService) requireDirector(ctx context.Context, campaignID, viewerID string) error {
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return err
	}
	if role != domain.RoleDirector {
		return ErrNotAuthorized
	}
	return nil
}

func (s *SessionService) memberRole(ctx context.Context, campaignID, viewerID string) (domain.Role, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return "", ErrCampaignNotFound
		}
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to load campaign for role check")
		return "", ErrInternalServer
	}
	role, ok := campaign.RoleOf(viewerID)
	if !ok {
		return "", ErrNotAuthorized
	}
	return role, nil
}

func (s *SessionService) publish(ctx context.Context, campaignID string) {
	event := domain.ChangeEvent{Path: domain.PathSessions, At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).
			Error("Failed to publish session change")
	}
}

func (s *SessionService) publishNotes(ctx context.Context, campaignID, sessionID string) {
	event := domain.ChangeEvent{Path: domain.LiveNotePath(sessionID), At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithField("campaign_id", campaignID).
			Error("Failed to publish live note change")
	}
}
