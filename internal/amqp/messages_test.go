package amqp

import (
	"testing"
	"time"
)

func TestRecordsChangedMessage_JSONRoundTrip(t *testing.T) {
	msg := NewRecordsChangedMessage(ScopeContributions, "2024-03-01")
	if msg.Timestamp.IsZero() {
		t.Error("NewRecordsChangedMessage left timestamp zero")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := RecordsChangedMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.Scope != ScopeContributions || decoded.Date != "2024-03-01" {
		t.Errorf("decoded = %+v", decoded)
	}
	if !decoded.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Errorf("timestamp drifted through JSON: %v != %v", decoded.Timestamp, msg.Timestamp)
	}
}

func TestRecordsChangedMessageFromJSON_Malformed(t *testing.T) {
	if _, err := RecordsChangedMessageFromJSON([]byte("not json")); err == nil {
		t.Error("malformed payload decoded without error")
	}
}
