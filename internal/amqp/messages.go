package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds carried on the transaction events queue.
const (
	EventTransactionCreated = "transaction.created"
	EventTransactionDeleted = "transaction.deleted"
)

// TransactionEvent notifies asynchronous consumers that a transaction
// changed. GoalID is set when the transaction contributes to a financial
// goal, so the goal worker can recompute that goal's progress.
type TransactionEvent struct {
	Kind          string    `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	GoalID        *int64    `json:"goal_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewTransactionEvent(kind string, transactionID int64, goalID *int64) *TransactionEvent {
	return &TransactionEvent{
		Kind:          kind,
		TransactionID: transactionID,
		GoalID:        goalID,
		OccurredAt:    time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
