package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository/mocks"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

func newSessionService(t *testing.T) (*service.SessionService, *mocks.SessionRepository, *mocks.LiveNoteRepository, *mocks.CampaignRepository, *mocks.StateRepository) {
	t.Helper()
	sessionRepo := new(mocks.SessionRepository)
	noteRepo := new(mocks.LiveNoteRepository)
	campaignRepo := new(mocks.CampaignRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewSessionService(sessionRepo, noteRepo, campaignRepo, stateRepo)
	return svc, sessionRepo, noteRepo, campaignRepo, stateRepo
}

func TestSessionService_Start_DirectorOnly(t *testing.T) {
	svc, sessionRepo, _, campaignRepo, stateRepo := newSessionService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	_, err := svc.Start(ctx, "c-1", "p1", "Session 4")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	sessionRepo.On("Save", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.CampaignID == "c-1" && s.Status == domain.SessionActive && s.Name == "Session 4"
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	session, err := svc.Start(ctx, "c-1", "gm", "Session 4")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.False(t, session.StartedAt.IsZero())
}

func TestSessionService_Start_RequiresName(t *testing.T) {
	svc, _, _, _, _ := newSessionService(t)

	_, err := svc.Start(context.Background(), "c-1", "gm", "")
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestSessionService_Finalize_CompilesSummaryAndClearsLog(t *testing.T) {
	svc, sessionRepo, noteRepo, campaignRepo, stateRepo := newSessionService(t)
	ctx := context.Background()
	session := &domain.Session{
		ID: "s-1", CampaignID: "c-1", Name: "Session 3",
		Status:  domain.SessionActive,
		Summary: "Pre-session prep notes.",
	}

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	sessionRepo.On("FindByID", ctx, "s-1").Return(session, nil)
	noteRepo.On("ListBySession", ctx, "s-1").Return([]domain.LiveNote{
		{ID: "n-1", Content: "met the oracle", Seq: 1},
		{ID: "n-2", Content: "fear track hit 7", Seq: 2, Highlight: true},
	}, nil).Once()
	sessionRepo.On("Save", ctx, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Status == domain.SessionFinalized && s.EndedAt != nil &&
			strings.Contains(s.Summary, "Pre-session prep notes.") &&
			strings.Contains(s.Summary, "- fear track hit 7") &&
			!strings.Contains(s.Summary, "met the oracle")
	})).Return(nil).Once()
	noteRepo.On("ClearSession", ctx, "s-1").Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.MatchedBy(func(e domain.ChangeEvent) bool {
		return e.Path == domain.PathSessions
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.MatchedBy(func(e domain.ChangeEvent) bool {
		return e.Path == domain.LiveNotePath("s-1")
	})).Return(nil).Once()

	finalized, err := svc.Finalize(ctx, "c-1", "s-1", "gm")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinalized, finalized.Status)
	sessionRepo.AssertExpectations(t)
	noteRepo.AssertExpectations(t)
	stateRepo.AssertExpectations(t)
}

func TestSessionService_Finalize_AlreadyFinalized(t *testing.T) {
	svc, sessionRepo, noteRepo, campaignRepo, _ := newSessionService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	sessionRepo.On("FindByID", ctx, "s-1").Return(&domain.Session{
		ID: "s-1", CampaignID: "c-1", Status: domain.SessionFinalized,
	}, nil).Once()

	_, err := svc.Finalize(ctx, "c-1", "s-1", "gm")

	// A re-delivered finalize must not touch the stored summary again.
	assert.True(t, errors.Is(err, service.ErrSessionFinalized))
	sessionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	noteRepo.AssertNotCalled(t, "ClearSession", mock.Anything, mock.Anything)
}

func TestSessionService_Finalize_DirectorOnly(t *testing.T) {
	svc, sessionRepo, _, campaignRepo, _ := newSessionService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	_, err := svc.Finalize(ctx, "c-1", "s-1", "p1")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	sessionRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestSessionService_Finalize_SurvivesClearFailure(t *testing.T) {
	svc, sessionRepo, noteRepo, campaignRepo, stateRepo := newSessionService(t)
	ctx := context.Background()
	session := &domain.Session{ID: "s-1", CampaignID: "c-1", Status: domain.SessionActive}

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	sessionRepo.On("FindByID", ctx, "s-1").Return(session, nil)
	noteRepo.On("ListBySession", ctx, "s-1").Return([]domain.LiveNote{}, nil).Once()
	sessionRepo.On("Save", ctx, session).Return(nil).Once()
	noteRepo.On("ClearSession", ctx, "s-1").Return(assert.AnError).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	// The summary is durable once saved; a failed log wipe is not an error.
	finalized, err := svc.Finalize(ctx, "c-1", "s-1", "gm")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinalized, finalized.Status)
}
