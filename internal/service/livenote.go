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

// LiveNoteService manages the ephemeral note log of an active session. Notes
// exist to be compiled into the session summary and are cleared on finalize.
type LiveNoteService struct {
	noteRepo     repository.LiveNoteRepository
	sessionRepo  repository.SessionRepository
	campaignRepo repository.CampaignRepository
	stateRepo    repository.StateRepository
}

func NewLiveNoteService(
	noteRepo repository.LiveNoteRepository,
	sessionRepo repository.SessionRepository,
	campaignRepo repository.CampaignRepository,
	stateRepo repository.StateRepository,
) *LiveNoteService {
	if noteRepo == nil || sessionRepo == nil || campaignRepo == nil || stateRepo == nil {
		panic("all repositories must be non-nil for LiveNoteService")
	}
	return &LiveNoteService{
		noteRepo:     noteRepo,
		sessionRepo:  sessionRepo,
		campaignRepo: campaignRepo,
		stateRepo:    stateRepo,
	}
}

// Add appends a note to an active session. Any member may write; the log is a
// shared scratchpad, not a per-player document.
func (s *LiveNoteService) Add(ctx context.Context, campaignID, sessionID, authorID, authorName, content string, seq int) (*domain.LiveNote, error) {
	if content == "" {
		return nil, fmt.Errorf("add live note: %w: content is empty", ErrValidation)
	}
	if _, err := s.memberRole(ctx, campaignID, authorID); err != nil {
		return nil, err
	}
	session, err := s.loadSession(ctx, campaignID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, ErrSessionFinalized
	}

	note := &domain.LiveNote{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		SessionID:  sessionID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		Seq:        seq,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.noteRepo.Save(ctx, note); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to save live note")
		return nil, ErrInternalServer
	}

	s.publish(ctx, campaignID, sessionID)
	return note, nil
}

// List returns the session's notes in display order. Live notes are visible to
// every member; the access filter does not apply here.
func (s *LiveNoteService) List(ctx context.Context, campaignID, sessionID, viewerID string) ([]domain.LiveNote, error) {
	if _, err := s.memberRole(ctx, campaignID, viewerID); err != nil {
		return nil, err
	}
	if _, err := s.loadSession(ctx, campaignID, sessionID); err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to list live notes")
		return nil, ErrInternalServer
	}
	domain.SortNotes(notes)
	return notes, nil
}

// ToggleHighlight flips a note's highlight flag. Any member may curate which
// notes make the summary, not just the author.
func (s *LiveNoteService) ToggleHighlight(ctx context.Context, campaignID, noteID, viewerID string) (*domain.LiveNote, error) {
	if _, err := s.memberRole(ctx, campaignID, viewerID); err != nil {
		return nil, err
	}
	note, err := s.loadNote(ctx, campaignID, noteID)
	if err != nil {
		return nil, err
	}

	note.Highlight = !note.Highlight
	if err := s.noteRepo.Save(ctx, note); err != nil {
		logrus.WithError(err).WithField("note_id", noteID).Error("Failed to toggle note highlight")
		return nil, ErrInternalServer
	}
	s.publish(ctx, campaignID, note.SessionID)
	return note, nil
}

// Delete removes a note. Allowed for the note's author and for directors.
func (s *LiveNoteService) Delete(ctx context.Context, campaignID, noteID, viewerID string) error {
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return err
	}
	note, err := s.loadNote(ctx, campaignID, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != viewerID && role != domain.RoleDirector {
		return ErrNotAuthorized
	}

	if err := s.noteRepo.Delete(ctx, noteID); err != nil {
		logrus.WithError(err).WithField("note_id", noteID).Error("Failed to delete live note")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID, note.SessionID)
	return nil
}

// Clear wipes a session's note log without finalizing. Director only.
func (s *LiveNoteService) Clear(ctx context.Context, campaignID, sessionID, viewerID string) error {
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return err
	}
	if role != domain.RoleDirector {
		return ErrNotAuthorized
	}
	if _, err := s.loadSession(ctx, campaignID, sessionID); err != nil {
		return err
	}

	if err := s.noteRepo.ClearSession(ctx, sessionID); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to clear live notes")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID, sessionID)
	return nil
}

func (s *LiveNoteService) loadNote(ctx context.Context, campaignID, noteID string) (*domain.LiveNote, error) {
	note, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		logrus.WithError(err).WithField("note_id", noteID).Error("Failed to load live note")
		return nil, ErrInternalServer
	}
	if note.CampaignID != campaignID {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

func (s *LiveNoteService) loadSession(ctx context.Context, campaignID, sessionID string) (*domain.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		logrus.WithError(err).WithField("session_id", sessionID).Error("Failed to load session")
		return nil, ErrInternalServer
	}
	if session.CampaignID != campaignID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *LiveNoteService) memberRole(ctx context.Context, campaignID, viewerID string) (domain.Role, error) {
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

func (s *LiveNoteService) publish(ctx context.Context, campaignID, sessionID string) {
	event := domain.ChangeEvent{Path: domain.LiveNotePath(sessionID), At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "session_id": sessionID,
		}).Error("Failed to publish live note change")
	}
}
