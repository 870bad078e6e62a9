package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseChangedMessage announces a mutation of the expense store. Consumers
// re-read the expense list; the message carries no record data beyond the id.
type ExpenseChangedMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Version   uint64    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseChangedMessage(id, op string, version uint64) *ExpenseChangedMessage {
	return &ExpenseChangedMessage{
		ID:        id,
		Op:        op,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseChangedMessageFromJSON(data []byte) (*ExpenseChangedMessage, error) {
	var msg ExpenseChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
