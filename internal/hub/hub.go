package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/dto"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/feed"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

// WebSocket timing shared by hub and client.
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// HubMessage is the envelope passed on the Hub's internal channel.
type HubMessage struct {
	Type       string // "register", "unregister", "intent"
	CampaignID string
	UserID     string
	Client     *Client
	RawData    []byte // raw WebSocket payload for intents
}

// Hub tracks the connected clients of every campaign and dispatches their
// intents to the services. Snapshot delivery runs through per-client feed
// subscriptions, so the hub itself never fans writes out to peers; each
// subscriber reloads when the change event lands.
type Hub struct {
	messageChan chan HubMessage

	campaigns map[string]map[*Client]bool
	roomsMu   sync.RWMutex

	feeds *feed.Manager

	campaignService     *service.CampaignService
	entityService       *service.EntityService
	presenceService     *service.PresenceService
	conversationService *service.ConversationService
	liveNoteService     *service.LiveNoteService
	sessionService      *service.SessionService
}

func NewHub(
	feeds *feed.Manager,
	campaignService *service.CampaignService,
	entityService *service.EntityService,
	presenceService *service.PresenceService,
	conversationService *service.ConversationService,
	liveNoteService *service.LiveNoteService,
	sessionService *service.SessionService,
) *Hub {
	if feeds == nil {
		panic("feed.Manager cannot be nil for Hub")
	}
	if campaignService == nil || entityService == nil || presenceService == nil ||
		conversationService == nil || liveNoteService == nil || sessionService == nil {
		panic("all services must be non-nil for Hub")
	}
	return &Hub{
		messageChan:         make(chan HubMessage, 512),
		campaigns:           make(map[string]map[*Client]bool),
		feeds:               feeds,
		campaignService:     campaignService,
		entityService:       entityService,
		presenceService:     presenceService,
		conversationService: conversationService,
		liveNoteService:     liveNoteService,
		sessionService:      sessionService,
	}
}

// Run drives the hub event loop. It should run in its own goroutine and ends
// when the message channel is closed.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		case "intent":
			// Intents hit the database; keep the hub loop free.
			go h.handleIntent(msg)
		default:
			log.Warnf("Hub: Received unknown message type: %s from user %s in campaign %s",
				msg.Type, msg.UserID, msg.CampaignID)
		}
	}
	log.Info("Hub is shutting down...")
}

// QueueMessage enqueues a message without blocking. Returns false when the
// channel is full.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithFields(logrus.Fields{
			"message_type": msg.Type,
			"campaign_id":  msg.CampaignID,
			"user_id":      msg.UserID,
		}).Warn("Hub message channel full, dropping message")
		return false
	}
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"campaign_id": client.campaignID,
		"user_id":     client.userID,
		"action":      "registerClient",
	})

	h.roomsMu.Lock()
	if _, ok := h.campaigns[client.campaignID]; !ok {
		h.campaigns[client.campaignID] = make(map[*Client]bool)
		logCtx.Info("Client list created for new campaign")
	}
	h.campaigns[client.campaignID][client] = true
	h.roomsMu.Unlock()

	// Connection implies presence; the heartbeater writes online immediately
	// and keeps the record fresh until the client unregisters.
	client.heartbeater = h.presenceService.NewHeartbeater(
		context.Background(), client.campaignID, client.userID, client.userName)

	logCtx.Info("Client registered to Hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"campaign_id": client.campaignID,
		"user_id":     client.userID,
		"action":      "unregisterClient",
	})

	h.roomsMu.Lock()
	if roomClients, ok := h.campaigns[client.campaignID]; ok {
		if _, exists := roomClients[client]; exists {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.campaigns, client.campaignID)
				logCtx.Info("Campaign empty, removed from Hub")
			}
		} else {
			logCtx.Warn("Client not found in campaign during unregister")
		}
	} else {
		logCtx.Warn("Campaign not found during client unregister")
	}
	h.roomsMu.Unlock()

	// Teardown order matters: subscriptions and the heartbeater first, so no
	// snapshot delivery is in flight when the send channel goes away. Intent
	// goroutines can still race past this point; closeSend and sendMessage
	// share a flag so a late send degrades to a drop instead of a panic.
	client.cancelSubscriptions()
	if client.heartbeater != nil {
		client.heartbeater.Stop(context.Background())
	}
	client.closeSend()
	logCtx.Info("Client unregistered from Hub")
}

// handleIntent parses and executes one client intent.
func (h *Hub) handleIntent(msg HubMessage) {
	ctx := context.Background()
	client := msg.Client
	logCtx := logrus.WithFields(logrus.Fields{
		"campaign_id": msg.CampaignID,
		"user_id":     msg.UserID,
		"operation":   "handleIntent",
	})

	var intent dto.ClientMessage
	if err := json.Unmarshal(msg.RawData, &intent); err != nil {
		logCtx.WithError(err).Warn("Failed to parse client message")
		client.sendError("parse", "malformed message")
		return
	}
	logCtx = logCtx.WithField("client_action", intent.Action)

	var err error
	switch intent.Action {
	case dto.ActionSubscribe:
		err = h.subscribeClient(ctx, client, intent.Path)
	case dto.ActionUnsubscribe:
		client.unsubscribe(intent.Path)
	case dto.ActionHeartbeat, dto.ActionSetView:
		if client.heartbeater != nil {
			client.heartbeater.SetView(ctx, intent.View)
		}
	case dto.ActionAway:
		if client.heartbeater != nil {
			client.heartbeater.MarkAway(ctx)
		}
	case dto.ActionOpenDirect:
		var conversation *domain.Conversation
		conversation, err = h.conversationService.EnsureDirect(
			ctx, msg.CampaignID, client.userID, client.userName, intent.OtherID)
		if err == nil {
			client.sendMessage(dto.ServerMessage{Type: dto.TypeAck, Path: dto.ActionOpenDirect, Data: conversation})
			return
		}
	case dto.ActionSendMessage:
		_, err = h.conversationService.Send(
			ctx, msg.CampaignID, intent.ConversationID, client.userID, client.userName, intent.Content)
	case dto.ActionMarkRead:
		err = h.conversationService.MarkRead(ctx, msg.CampaignID, intent.ConversationID, client.userID)
	case dto.ActionAddNote:
		_, err = h.liveNoteService.Add(
			ctx, msg.CampaignID, intent.SessionID, client.userID, client.userName, intent.Content, intent.Seq)
	case dto.ActionToggleHighlight:
		_, err = h.liveNoteService.ToggleHighlight(ctx, msg.CampaignID, intent.NoteID, client.userID)
	case dto.ActionDeleteNote:
		err = h.liveNoteService.Delete(ctx, msg.CampaignID, intent.NoteID, client.userID)
	case dto.ActionClearNotes:
		err = h.liveNoteService.Clear(ctx, msg.CampaignID, intent.SessionID, client.userID)
	case dto.ActionAddEntity:
		name := ""
		if intent.Name != nil {
			name = *intent.Name
		}
		hidden := intent.Hidden != nil && *intent.Hidden
		_, err = h.entityService.Add(
			ctx, msg.CampaignID, domain.EntityKind(intent.Kind), client.userID, name, intent.Fields, hidden)
	case dto.ActionUpdateEntity:
		_, err = h.entityService.Update(ctx, msg.CampaignID, intent.EntityID, client.userID, service.UpdateFields{
			Name:         intent.Name,
			Content:      intent.Fields,
			Hidden:       intent.Hidden,
			ForceVisible: intent.Visible,
		})
	case dto.ActionDeleteEntity:
		err = h.entityService.Delete(ctx, msg.CampaignID, intent.EntityID, client.userID)
	case dto.ActionIncrementFear:
		_, err = h.campaignService.IncrementFear(ctx, msg.CampaignID, client.userID, intent.Delta)
	default:
		logCtx.Warnf("Unknown client action: %s", intent.Action)
		client.sendError(intent.Action, "unknown action")
		return
	}

	if err != nil {
		logCtx.WithError(err).Warn("Client intent rejected")
		client.sendError(intent.Action, err.Error())
	}
}

// subscribeClient attaches a feed subscription for the path and wires snapshot
// delivery to the client's send channel.
func (h *Hub) subscribeClient(ctx context.Context, client *Client, path string) error {
	loader, err := h.resolveLoader(client, path)
	if err != nil {
		return err
	}

	onSnapshot := func(snapshot interface{}) {
		client.sendMessage(dto.ServerMessage{Type: dto.TypeSnapshot, Path: path, Data: snapshot})
	}
	onError := func(err error) {
		client.sendError(dto.ActionSubscribe, fmt.Sprintf("%s: %s", path, err))
	}

	// Detach any previous subscription on the same path before replacing it.
	client.unsubscribe(path)

	sub, err := h.feeds.Subscribe(ctx, client.campaignID, path, loader, onSnapshot, onError)
	if err != nil {
		return err
	}
	client.addSubscription(path, sub)
	return nil
}

// resolveLoader maps a logical path to the snapshot loader serving it. Every
// loader returns a usable empty value alongside its error, so a transient
// failure degrades to an empty snapshot instead of wedging the subscriber.
func (h *Hub) resolveLoader(client *Client, path string) (feed.LoadFunc, error) {
	campaignID, userID := client.campaignID, client.userID

	switch {
	case path == domain.PathCampaign:
		return func(ctx context.Context) (interface{}, error) {
			campaign, err := h.campaignService.Get(ctx, campaignID, userID)
			if err != nil {
				return &domain.Campaign{ID: campaignID}, err
			}
			return campaign, nil
		}, nil

	case path == domain.PathPresence:
		return func(ctx context.Context) (interface{}, error) {
			presences, err := h.presenceService.List(ctx, campaignID, time.Now().UTC())
			if presences == nil {
				presences = []domain.Presence{}
			}
			return presences, err
		}, nil

	case path == domain.PathConversations:
		return func(ctx context.Context) (interface{}, error) {
			conversations, err := h.conversationService.ListForParticipant(ctx, campaignID, userID)
			if conversations == nil {
				conversations = []domain.Conversation{}
			}
			return conversations, err
		}, nil

	case path == domain.PathSessions:
		return func(ctx context.Context) (interface{}, error) {
			sessions, err := h.sessionService.List(ctx, campaignID, userID)
			if sessions == nil {
				sessions = []domain.Session{}
			}
			return sessions, err
		}, nil

	case strings.HasPrefix(path, "entities/"):
		kind := domain.EntityKind(strings.TrimPrefix(path, "entities/"))
		if !domain.KnownKind(kind) {
			return nil, fmt.Errorf("unknown entity kind %q", kind)
		}
		return func(ctx context.Context) (interface{}, error) {
			entities, err := h.entityService.List(ctx, campaignID, kind, userID)
			if entities == nil {
				entities = []domain.Entity{}
			}
			return entities, err
		}, nil

	case strings.HasPrefix(path, "conversations/") && strings.HasSuffix(path, "/messages"):
		conversationID := strings.TrimSuffix(strings.TrimPrefix(path, "conversations/"), "/messages")
		if conversationID == "" {
			return nil, fmt.Errorf("message path missing conversation id")
		}
		return func(ctx context.Context) (interface{}, error) {
			messages, err := h.conversationService.Messages(ctx, campaignID, conversationID, userID)
			if messages == nil {
				messages = []domain.Message{}
			}
			return messages, err
		}, nil

	case strings.HasPrefix(path, "liveNotes/"):
		sessionID := strings.TrimPrefix(path, "liveNotes/")
		if sessionID == "" {
			return nil, fmt.Errorf("live note path missing session id")
		}
		return func(ctx context.Context) (interface{}, error) {
			notes, err := h.liveNoteService.List(ctx, campaignID, sessionID, userID)
			if notes == nil {
				notes = []domain.LiveNote{}
			}
			return notes, err
		}, nil
	}

	return nil, fmt.Errorf("unknown subscription path %q", path)
}
