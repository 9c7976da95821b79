package events

import (
	"encoding/json"
	"time"
)

// Action describes what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent is a lightweight notification about a transaction change.
// It carries only identifiers, the consumer fetches the full record from the
// database when it needs one.
type TransactionEvent struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewTransactionEvent(id, userID int64, action Action) *TransactionEvent {
	return &TransactionEvent{
		ID:         id,
		UserID:     userID,
		Action:     action,
		OccurredAt: time.Now(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
