package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/dto"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/feed"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
)

// Client is one WebSocket connection scoped to a campaign. It owns the feed
// subscriptions and the presence heartbeater created for that scope; both are
// torn down when the connection unregisters.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	campaignID string
	userID     string
	userName   string

	// sendMu guards send against closeSend. Intent goroutines are not
	// serialized with unregister, so a plain close would race a late
	// sendMessage and panic.
	sendMu     sync.Mutex
	sendClosed bool
	send       chan []byte

	heartbeater *service.Heartbeater

	subsMu sync.Mutex
	subs   map[string]*feed.Subscription
}

func NewClient(hub *Hub, conn *websocket.Conn, campaignID, userID, userName string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		campaignID: campaignID,
		userID:     userID,
		userName:   userName,
		send:       make(chan []byte, 256),
		subs:       make(map[string]*feed.Subscription),
	}
}

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

func (c *Client) addSubscription(path string, sub *feed.Subscription) {
	c.subsMu.Lock()
	c.subs[path] = sub
	c.subsMu.Unlock()
}

func (c *Client) unsubscribe(path string) {
	c.subsMu.Lock()
	sub, ok := c.subs[path]
	if ok {
		delete(c.subs, path)
	}
	c.subsMu.Unlock()
	if ok {
		sub.Cancel()
	}
}

// cancelSubscriptions detaches every live subscription. Cancel guarantees no
// snapshot callback fires after it returns, so nothing lands on the closed
// send channel afterwards.
func (c *Client) cancelSubscriptions() {
	c.subsMu.Lock()
	subs := make([]*feed.Subscription, 0, len(c.subs))
	for path, sub := range c.subs {
		subs = append(subs, sub)
		delete(c.subs, path)
	}
	c.subsMu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}

// sendMessage marshals and queues a server message without blocking. A full
// send channel drops the message; the next snapshot supersedes it anyway.
func (c *Client) sendMessage(msg dto.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id": c.userID, "campaign_id": c.campaignID,
		}).Error("Failed to marshal server message")
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	select {
	case c.send <- payload:
	default:
		logrus.WithFields(logrus.Fields{
			"user_id": c.userID, "campaign_id": c.campaignID, "type": msg.Type,
		}).Warn("Client send channel full, dropping message")
	}
}

// closeSend closes the send channel exactly once. Messages already queued are
// still drained by WritePump; later sendMessage calls become no-ops.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (c *Client) sendError(action, message string) {
	c.sendMessage(dto.ServerMessage{
		Type: dto.TypeError,
		Data: dto.ErrorData{Action: action, Message: message},
	})
}

// ReadPump pumps messages from the WebSocket into the Hub's channel.
func (c *Client) ReadPump() {
	defer func() {
		unregisterMsg := HubMessage{Type: "unregister", Client: c}
		select {
		case c.hub.messageChan <- unregisterMsg:
		case <-time.After(1 * time.Second):
			logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
				Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
			Info("readPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID})
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		intentMsg := HubMessage{
			Type:       "intent",
			CampaignID: c.campaignID,
			UserID:     c.userID,
			Client:     c,
			RawData:    message,
		}
		select {
		case c.hub.messageChan <- intentMsg:
		default:
			logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
				Warn("Hub message channel full, dropping client message")
		}
	}
}

// WritePump pumps messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
			Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the send channel during unregister.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
					WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithFields(logrus.Fields{"user_id": c.userID, "campaign_id": c.campaignID}).
					WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}

func (c *Client) CampaignID() string { return c.campaignID }
func (c *Client) UserID() string     { return c.userID }
func (c *Client) CloseConn()         { c.conn.Close() }
