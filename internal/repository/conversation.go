package repository

import (
	"context"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// ConversationRepository stores conversations and their message
// sub-collections. The multi-row operations are transactional so that a
// message append and its unread bookkeeping cannot be observed half-applied.
type ConversationRepository interface {
	// FindByID returns ErrConversationNotFound when no such conversation
	// exists.
	FindByID(ctx context.Context, id string) (*domain.Conversation, error)

	// ListByCampaign returns every conversation of a campaign ordered by
	// most recent message.
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Conversation, error)

	// Save inserts a new conversation. Inserting an ID that already exists
	// is reported as ErrDuplicateEntry, never applied as an update;
	// deterministic IDs rely on that to resolve create races.
	Save(ctx context.Context, conversation *domain.Conversation) error

	// AppendMessage inserts the message and, in the same transaction,
	// updates the conversation's preview and timestamp and adds each ID in
	// unread to the conversation's unread-by set.
	AppendMessage(ctx context.Context, message *domain.Message, preview string, unread []string) error

	// ListMessages returns a conversation's messages in creation order.
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)

	// MarkRead removes the reader from the conversation's unread-by set and
	// adds them to the read-by set of every message they did not send, in
	// one transaction. Calling it again is a harmless no-op.
	MarkRead(ctx context.Context, conversationID, readerID string) error
}
