package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names. The prune task is scheduled periodically and carries no
// payload; finalize tasks are enqueued per session.
const (
	TypeSessionFinalize = "session:finalize"
	TypePresencePrune   = "presence:prune"
)

// SessionFinalizePayload identifies the session to finalize and the director
// who requested it, so the worker can re-run the authorization check.
type SessionFinalizePayload struct {
	CampaignID  string `json:"campaign_id"`
	SessionID   string `json:"session_id"`
	RequestedBy string `json:"requested_by"`
}

// NewSessionFinalizeTask builds the finalize task for one session.
func NewSessionFinalizeTask(campaignID, sessionID, requestedBy string) (*asynq.Task, error) {
	payload, err := json.Marshal(SessionFinalizePayload{
		CampaignID:  campaignID,
		SessionID:   sessionID,
		RequestedBy: requestedBy,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeSessionFinalize, payload, asynq.MaxRetry(3)), nil
}

// NewPresencePruneTask builds the periodic presence sweep task.
func NewPresencePruneTask() *asynq.Task {
	return asynq.NewTask(TypePresencePrune, nil)
}
