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
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository/mocks"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

func newConversationService(t *testing.T) (*service.ConversationService, *mocks.ConversationRepository, *mocks.CampaignRepository, *mocks.StateRepository) {
	t.Helper()
	convRepo := new(mocks.ConversationRepository)
	campaignRepo := new(mocks.CampaignRepository)
	stateRepo := new(mocks.StateRepository)
	return service.NewConversationService(convRepo, campaignRepo, stateRepo), convRepo, campaignRepo, stateRepo
}

func memberCampaign() *domain.Campaign {
	return &domain.Campaign{
		ID:      "c-1",
		OwnerID: "gm",
		Members: domain.MemberMap{
			"gm": {Role: domain.RoleDirector},
			"p1": {Role: domain.RolePlayer},
			"p2": {Role: domain.RolePlayer},
		},
		GameSystem: domain.DefaultGameSystem,
	}
}

func TestConversationService_EnsureDirect_CreatesOnce(t *testing.T) {
	svc, convRepo, campaignRepo, stateRepo := newConversationService(t)
	ctx := context.Background()
	wantID := domain.DirectConversationID("c-1", "p1", "p2")

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	convRepo.On("FindByID", ctx, wantID).Return(nil, repository.ErrConversationNotFound).Once()
	convRepo.On("Save", ctx, mock.MatchedBy(func(conv *domain.Conversation) bool {
		return conv.ID == wantID && conv.Type == domain.ConversationDirect &&
			conv.HasParticipant("p1") && conv.HasParticipant("p2")
	})).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	conversation, err := svc.EnsureDirect(ctx, "c-1", "p1", "Pat", "p2")
	require.NoError(t, err)
	assert.Equal(t, wantID, conversation.ID)
	convRepo.AssertExpectations(t)
}

func TestConversationService_EnsureDirect_LoserOfRaceLoadsWinner(t *testing.T) {
	svc, convRepo, campaignRepo, _ := newConversationService(t)
	ctx := context.Background()
	wantID := domain.DirectConversationID("c-1", "p1", "p2")
	existing := &domain.Conversation{ID: wantID, CampaignID: "c-1", Type: domain.ConversationDirect}

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)
	convRepo.On("FindByID", ctx, wantID).Return(nil, repository.ErrConversationNotFound).Once()
	convRepo.On("Save", ctx, mock.Anything).Return(repository.ErrDuplicateEntry).Once()
	convRepo.On("FindByID", ctx, wantID).Return(existing, nil).Once()

	conversation, err := svc.EnsureDirect(ctx, "c-1", "p1", "Pat", "p2")
	require.NoError(t, err)
	assert.Same(t, existing, conversation)
}

func TestConversationService_EnsureDirect_RequiresBothMembers(t *testing.T) {
	svc, _, campaignRepo, _ := newConversationService(t)
	ctx := context.Background()

	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	_, err := svc.EnsureDirect(ctx, "c-1", "p1", "Pat", "stranger")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
}

func TestConversationService_EnsureDirect_RejectsForeignCampaignRow(t *testing.T) {
	svc, convRepo, campaignRepo, _ := newConversationService(t)
	ctx := context.Background()
	wantID := domain.DirectConversationID("c-2", "p1", "p2")

	campaignRepo.On("FindByID", ctx, "c-2").Return(memberCampaign(), nil)
	// A row under the derived ID that belongs to another campaign must never
	// be handed out as this campaign's channel.
	convRepo.On("FindByID", ctx, wantID).Return(&domain.Conversation{
		ID: wantID, CampaignID: "c-1", Type: domain.ConversationDirect,
	}, nil).Once()

	_, err := svc.EnsureDirect(ctx, "c-2", "p1", "Pat", "p2")
	assert.True(t, errors.Is(err, service.ErrConversationNotFound))
	convRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestConversationService_Send_MarksOthersUnread(t *testing.T) {
	svc, convRepo, _, stateRepo := newConversationService(t)
	ctx := context.Background()
	conv := &domain.Conversation{
		ID:           "c-1:p1_p2",
		CampaignID:   "c-1",
		Type:         domain.ConversationDirect,
		Participants: domain.StringSet{"p1", "p2"},
	}

	convRepo.On("FindByID", ctx, "c-1:p1_p2").Return(conv, nil).Once()
	convRepo.On("AppendMessage", ctx, mock.MatchedBy(func(m *domain.Message) bool {
		return m.SenderID == "p1" && m.ReadBy.Contains("p1") && m.Content == "hail and well met"
	}), "hail and well met", []string{"p2"}).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	message, err := svc.Send(ctx, "c-1", "c-1:p1_p2", "p1", "Pat", "hail and well met")
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	convRepo.AssertExpectations(t)
}

func TestConversationService_Send_Validation(t *testing.T) {
	svc, convRepo, _, _ := newConversationService(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "c-1", "c-1:p1_p2", "p1", "Pat", "")
	assert.True(t, errors.Is(err, service.ErrValidation), "empty content is rejected")

	_, err = svc.Send(ctx, "c-1", "c-1:p1_p2", "p1", "Pat", strings.Repeat("x", domain.MaxMessageLength+1))
	assert.True(t, errors.Is(err, service.ErrValidation), "oversized content is rejected")

	convRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConversationService_Send_BroadcastDirectorOnly(t *testing.T) {
	svc, convRepo, campaignRepo, stateRepo := newConversationService(t)
	ctx := context.Background()
	broadcastID := domain.BroadcastConversationID("c-1")
	broadcast := &domain.Conversation{
		ID:           broadcastID,
		CampaignID:   "c-1",
		Type:         domain.ConversationBroadcast,
		Participants: domain.StringSet{"gm", "p1"},
	}

	convRepo.On("FindByID", ctx, broadcastID).Return(broadcast, nil)
	campaignRepo.On("FindByID", ctx, "c-1").Return(memberCampaign(), nil)

	_, err := svc.Send(ctx, "c-1", broadcastID, "p1", "Pat", "announcement")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized), "players cannot post announcements")

	convRepo.On("AppendMessage", ctx, mock.Anything, "announcement", []string{"p1"}).Return(nil).Once()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	_, err = svc.Send(ctx, "c-1", broadcastID, "gm", "Dana", "announcement")
	assert.NoError(t, err)
}

func TestConversationService_Send_NonParticipant(t *testing.T) {
	svc, convRepo, _, _ := newConversationService(t)
	ctx := context.Background()
	conv := &domain.Conversation{
		ID:           "c-1:p1_p2",
		CampaignID:   "c-1",
		Type:         domain.ConversationDirect,
		Participants: domain.StringSet{"p1", "p2"},
	}
	convRepo.On("FindByID", ctx, "c-1:p1_p2").Return(conv, nil).Once()

	_, err := svc.Send(ctx, "c-1", "c-1:p1_p2", "intruder", "X", "hello")
	assert.True(t, errors.Is(err, service.ErrNotAuthorized))
}

func TestConversationService_MarkRead_Idempotent(t *testing.T) {
	svc, convRepo, _, stateRepo := newConversationService(t)
	ctx := context.Background()
	conv := &domain.Conversation{
		ID:           "c-1:p1_p2",
		CampaignID:   "c-1",
		Type:         domain.ConversationDirect,
		Participants: domain.StringSet{"p1", "p2"},
	}

	convRepo.On("FindByID", ctx, "c-1:p1_p2").Return(conv, nil)
	convRepo.On("MarkRead", ctx, "c-1:p1_p2", "p2").Return(nil).Twice()
	stateRepo.On("PublishChange", ctx, "c-1", mock.Anything).Return(nil)

	// Two concurrent tabs both mark read; neither call errors.
	require.NoError(t, svc.MarkRead(ctx, "c-1", "c-1:p1_p2", "p2"))
	require.NoError(t, svc.MarkRead(ctx, "c-1", "c-1:p1_p2", "p2"))
	convRepo.AssertExpectations(t)
}

func TestConversationService_ListForParticipant_FiltersMembership(t *testing.T) {
	svc, convRepo, _, _ := newConversationService(t)
	ctx := context.Background()

	broadcastID := domain.BroadcastConversationID("c-1")
	convRepo.On("ListByCampaign", ctx, "c-1").Return([]domain.Conversation{
		{ID: "c-1:p1_p2", Participants: domain.StringSet{"p1", "p2"}},
		{ID: "c-1:gm_p2", Participants: domain.StringSet{"gm", "p2"}},
		{ID: broadcastID, Participants: domain.StringSet{"gm", "p1", "p2"}},
	}, nil).Once()

	mine, err := svc.ListForParticipant(ctx, "c-1", "p1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "c-1:p1_p2", mine[0].ID)
	assert.Equal(t, broadcastID, mine[1].ID)
}
