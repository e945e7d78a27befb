package amqp

import (
	"encoding/json"
	"time"
)

// Change scopes. Scope tells consumers which derived views went stale.
const (
	ScopeContributions = "contributions"
	ScopeWorkRecords   = "work_records"
)

// RecordsChangedMessage announces that the stored record set changed and
// derived activity views must be recomputed. It replaces the ambient
// "settings changed" flag the old dashboard kept in browser storage with
// an explicit event consumers subscribe to.
type RecordsChangedMessage struct {
	Scope     string    `json:"scope"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordsChangedMessage creates a change event for one scope; date is
// the affected civil date when known, empty for bulk changes.
func NewRecordsChangedMessage(scope, date string) *RecordsChangedMessage {
	return &RecordsChangedMessage{
		Scope:     scope,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordsChangedMessageFromJSON creates a message from JSON bytes.
func RecordsChangedMessageFromJSON(data []byte) (*RecordsChangedMessage, error) {
	var msg RecordsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
