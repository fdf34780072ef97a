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

func newEntityService(t *testing.T) (*service.EntityService, *mocks.EntityRepository, *mocks.CampaignRepository, *mocks.StateRepository) {
	t.Helper()
	entityRepo := new(mocks.EntityRepository)
	campaignRepo := new(mocks.CampaignRepository)
	stateRepo := new(mocks.StateRepository)
	return service.NewEntityService(entityRepo, campaignRepo, stateRepo), entityRepo, campaignRepo, stateRepo
}

func TestEntityService_List_AppliesVisibilityFilter(t *testing.T) {
	svc, entityRepo, campaignRepo, _ := newEntityService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	entityRepo.On("ListByKind", ctx, "c-1", domain.KindNPC).Return([]domain.Entity{
		{ID: "e1", CampaignID: "c-1", Kind: domain.KindNPC},
		{ID: "e2", CampaignID: "c-1", Kind: domain.KindNPC, Hidden: true},
		{ID: "e3", CampaignID: "c-1", Kind: domain.KindNPC, Hidden: true, ForceVisible: true},
	}, nil)

	visible, err := svc.List(ctx, "c-1", domain.KindNPC, "p1")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "e1", visible[0].ID)
	assert.Equal(t, "e3", visible[1].ID)

	all, err := svc.List(ctx, "c-1", domain.KindNPC, "gm")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestEntityService_List_UnknownKind(t *testing.T) {
	svc, _, _, _ := newEntityService(t)

	_, err := svc.List(context.Background(), "c-1", "dragon", "p1")
	assert.True(t, errors.Is(err, service.ErrValidation))
}

func TestEntityService_Add_PlayerLimitedToPersonalKinds(t *testing.T) {
	svc, entityRepo, campaignRepo, stateRepo := newEntityService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	_, err := svc.Add(ctx, "c-1", domain.KindLore, "p1", "Forbidden Lore", nil, false)
	assert.True(t, errors.Is(err, service.ErrNotAuthorized), "players cannot create reference records")

	entityRepo.On("Save", ctx, mock.MatchedBy(func(e *domain.Entity) bool {
		return e.Kind == domain.KindNote && e.CreatorID == "p1" && !e.Hidden
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	// A hidden=true request from a player is downgraded, not rejected.
	note, err := svc.Add(ctx, "c-1", domain.KindNote, "p1", "My Note", nil, true)
	require.NoError(t, err)
	assert.False(t, note.Hidden)
	entityRepo.AssertExpectations(t)
}

func TestEntityService_Add_DirectorMayHide(t *testing.T) {
	svc, entityRepo, campaignRepo, stateRepo := newEntityService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	entityRepo.On("Save", ctx, mock.MatchedBy(func(e *domain.Entity) bool {
		return e.Kind == domain.KindNPC && e.Hidden
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	npc, err := svc.Add(ctx, "c-1", domain.KindNPC, "gm", "Secret Villain", map[string]interface{}{"disposition": "hostile"}, true)
	require.NoError(t, err)
	assert.True(t, npc.Hidden)
}

func TestEntityService_Update_HiddenFlagDirectorOnly(t *testing.T) {
	svc, entityRepo, campaignRepo, _ := newEntityService(t)
	ctx := context.Background()
	hidden := true

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	entityRepo.On("FindByID", ctx, "e-1").Return(&domain.Entity{
		ID: "e-1", CampaignID: "c-1", Kind: domain.KindCharacter, CreatorID: "p1", Name: "Riftwalker",
	}, nil)

	// The author may edit their character but not flip visibility flags.
	_, err := svc.Update(ctx, "c-1", "e-1", "p1", service.UpdateFields{Hidden: &hidden})
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
	entityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestEntityService_Delete_ChecksMutability(t *testing.T) {
	svc, entityRepo, campaignRepo, stateRepo := newEntityService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	entityRepo.On("FindByID", ctx, "e-1").Return(&domain.Entity{
		ID: "e-1", CampaignID: "c-1", Kind: domain.KindNote, CreatorID: "p1",
	}, nil)

	err := svc.Delete(ctx, "c-1", "e-1", "p2")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))

	entityRepo.On("Delete", ctx, "e-1").Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)
	require.NoError(t, svc.Delete(ctx, "c-1", "e-1", "p1"))
}

func TestEntityService_Update_RejectsCrossCampaignRecord(t *testing.T) {
	svc, entityRepo, campaignRepo, _ := newEntityService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	entityRepo.On("FindByID", ctx, "e-other").Return(&domain.Entity{
		ID: "e-other", CampaignID: "c-999", Kind: domain.KindNPC, CreatorID: "gm",
	}, nil)

	_, err := svc.Update(ctx, "c-1", "e-other", "gm", service.UpdateFields{})
	assert.True(t, errors.Is(err, service.ErrEntityNotFound))
}
