package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Summary types route a trigger back to the aggregation that produces the
// corresponding notification text.
const (
	SummaryDaily  = "daily_summary"
	SummaryWeekly = "weekly_summary"
)

// ValidSummaryType reports whether t is a known summary discriminator.
func ValidSummaryType(t string) bool {
	return t == SummaryDaily || t == SummaryWeekly
}

// SummaryMessage asks the worker to recompute aggregates and render the
// notification for the given summary type.
type SummaryMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSummaryMessage creates a summary trigger for a known type.
func NewSummaryMessage(summaryType string) (*SummaryMessage, error) {
	if !ValidSummaryType(summaryType) {
		return nil, fmt.Errorf("unknown summary type: %s", summaryType)
	}
	return &SummaryMessage{
		Type:      summaryType,
		Timestamp: time.Now(),
	}, nil
}

// ToJSON converts the message to JSON bytes.
func (m *SummaryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryMessageFromJSON creates a message from JSON bytes.
func SummaryMessageFromJSON(data []byte) (*SummaryMessage, error) {
	var msg SummaryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !ValidSummaryType(msg.Type) {
		return nil, fmt.Errorf("unknown summary type: %s", msg.Type)
	}
	return &msg, nil
}

// WidgetRefreshMessage asks the worker to rebuild the shared widget payload
// after a ledger mutation.
type WidgetRefreshMessage struct {
	Timestamp time.Time `json:"timestamp"`
}

func NewWidgetRefreshMessage() *WidgetRefreshMessage {
	return &WidgetRefreshMessage{Timestamp: time.Now()}
}

func (m *WidgetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func WidgetRefreshMessageFromJSON(data []byte) (*WidgetRefreshMessage, error) {
	var msg WidgetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
