package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository/mocks"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

func newLiveNoteService(t *testing.T) (*service.LiveNoteService, *mocks.LiveNoteRepository, *mocks.SessionRepository, *mocks.CampaignRepository, *mocks.StateRepository) {
	t.Helper()
	noteRepo := new(mocks.LiveNoteRepository)
	sessionRepo := new(mocks.SessionRepository)
	campaignRepo := new(mocks.CampaignRepository)
	stateRepo := new(mocks.StateRepository)
	svc := service.NewLiveNoteService(noteRepo, sessionRepo, campaignRepo, stateRepo)
	return svc, noteRepo, sessionRepo, campaignRepo, stateRepo
}

func activeSession() *domain.Session {
	return &domain.Session{ID: "s-1", CampaignID: "c-1", Name: "Session 3", Status: domain.SessionActive}
}

func TestLiveNoteService_Add_AnyMemberOnActiveSession(t *testing.T) {
	svc, noteRepo, sessionRepo, campaignRepo, stateRepo := newLiveNoteService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	sessionRepo.On("FindByID", ctx, "s-1").Return(activeSession(), nil)
	noteRepo.On("Save", ctx, mock.MatchedBy(func(n *domain.LiveNote) bool {
		return n.SessionID == "s-1" && n.AuthorID == "p1" && n.Seq == 4
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.MatchedBy(func(e domain.ChangeEvent) bool {
		return e.Path == domain.LiveNotePath("s-1")
	})).Return(nil)

	note, err := svc.Add(ctx, "c-1", "s-1", "p1", "Pat", "the bridge collapsed", 4)
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	noteRepo.AssertExpectations(t)
}

func TestLiveNoteService_Add_RejectsFinalizedSession(t *testing.T) {
	svc, noteRepo, sessionRepo, campaignRepo, _ := newLiveNoteService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	sessionRepo.On("FindByID", ctx, "s-1").Return(&domain.Session{
		ID: "s-1", CampaignID: "c-1", Status: domain.SessionFinalized,
	}, nil)

	_, err := svc.Add(ctx, "c-1", "s-1", "p1", "Pat", "too late", 0)
	assert.True(t, errors.Is(err, service.ErrSessionFinalized))
	noteRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLiveNoteService_Delete_AuthorOrDirector(t *testing.T) {
	svc, noteRepo, _, campaignRepo, stateRepo := newLiveNoteService(t)
	ctx := context.Background()
	note := &domain.LiveNote{ID: "n-1", CampaignID: "c-1", SessionID: "s-1", AuthorID: "p1"}

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	noteRepo.On("FindByID", ctx, "n-1").Return(note, nil)

	err := svc.Delete(ctx, "c-1", "n-1", "p2")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized), "another player cannot delete the note")

	noteRepo.On("Delete", ctx, "n-1").Return(nil).Twice()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	require.NoError(t, svc.Delete(ctx, "c-1", "n-1", "p1"), "the author may delete")
	require.NoError(t, svc.Delete(ctx, "c-1", "n-1", "gm"), "a director may delete")
}

func TestLiveNoteService_Clear_DirectorOnly(t *testing.T) {
	svc, noteRepo, sessionRepo, campaignRepo, stateRepo := newLiveNoteService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	err := svc.Clear(ctx, "c-1", "s-1", "p1")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	noteRepo.AssertNotCalled(t, "ClearSession", mock.Anything, mock.Anything)

	sessionRepo.On("FindByID", ctx, "s-1").Return(activeSession(), nil)
	noteRepo.On("ClearSession", ctx, "s-1").Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	require.NoError(t, svc.Clear(ctx, "c-1", "s-1", "gm"))
}

func TestLiveNoteService_ToggleHighlight_Flips(t *testing.T) {
	svc, noteRepo, _, campaignRepo, stateRepo := newLiveNoteService(t)
	ctx := context.Background()
	note := &domain.LiveNote{ID: "n-1", CampaignID: "c-1", SessionID: "s-1", AuthorID: "gm"}

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	noteRepo.On("FindByID", ctx, "n-1").Return(note, nil)
	noteRepo.On("Save", ctx, note).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	// Curation is open to every member, not just the author.
	updated, err := svc.ToggleHighlight(ctx, "c-1", "n-1", "p2")
	require.NoError(t, err)
	assert.True(t, updated.Highlight)
}
