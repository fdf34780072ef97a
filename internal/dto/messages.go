package dto

// ClientMessage is the envelope for every intent a connected client sends over
// the campaign socket. Action selects the operation; the other fields are
// filled as that action needs them.
type ClientMessage struct {
	Action string `json:"action"`

	// subscribe / unsubscribe
	Path string `json:"path,omitempty"`

	// heartbeat / set_view
	View string `json:"view,omitempty"`

	// messaging
	ConversationID string `json:"conversationId,omitempty"`
	OtherID        string `json:"otherId,omitempty"`
	Content        string `json:"content,omitempty"`

	// live notes
	SessionID string `json:"sessionId,omitempty"`
	NoteID    string `json:"noteId,omitempty"`
	Seq       int    `json:"seq,omitempty"`

	// entity records
	Kind     string                 `json:"kind,omitempty"`
	EntityID string                 `json:"entityId,omitempty"`
	Name     *string                `json:"name,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
	Hidden   *bool                  `json:"hidden,omitempty"`
	Visible  *bool                  `json:"forceVisible,omitempty"`

	// fear counter
	Delta int `json:"delta,omitempty"`
}

// Client intent actions.
const (
	ActionSubscribe       = "subscribe"
	ActionUnsubscribe     = "unsubscribe"
	ActionHeartbeat       = "heartbeat"
	ActionAway            = "away"
	ActionSetView         = "set_view"
	ActionOpenDirect      = "open_direct"
	ActionSendMessage     = "send_message"
	ActionMarkRead        = "mark_read"
	ActionAddNote         = "add_note"
	ActionToggleHighlight = "toggle_highlight"
	ActionDeleteNote      = "delete_note"
	ActionClearNotes      = "clear_notes"
	ActionAddEntity       = "add_entity"
	ActionUpdateEntity    = "update_entity"
	ActionDeleteEntity    = "delete_entity"
	ActionIncrementFear   = "increment_fear"
)

// ServerMessage is the envelope for everything the server pushes: snapshot
// deliveries, action results and errors.
type ServerMessage struct {
	Type string      `json:"type"`
	Path string      `json:"path,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// Server message types.
const (
	TypeSnapshot = "snapshot"
	TypeAck      = "ack"
	TypeError    = "error"
)

// ErrorData names the action that failed so the client can surface it next to
// the right control.
type ErrorData struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}
