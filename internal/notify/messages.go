package notify

import (
	"encoding/json"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"
)

// LedgerEventMessage is the wire form of an engine event. The engine
// emits events as plain strings; the month and timestamp locate them in
// the ledger's timeline for whoever consumes the queue.
type LedgerEventMessage struct {
	Month     core.MonthKey    `json:"month"`
	Type      engine.EventType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

func NewLedgerEventMessage(month core.MonthKey, event engine.Event) *LedgerEventMessage {
	return &LedgerEventMessage{
		Month:     month,
		Type:      event.Type,
		Message:   event.Message,
		Timestamp: time.Now(),
	}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
