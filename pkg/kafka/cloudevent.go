package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CloudEvent is the envelope published to and consumed from Kafka topics.
type CloudEvent struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Type   string          `json:"type"`
	Time   time.Time       `json:"time"`
	Data   json.RawMessage `json:"data"`
}

// NewCloudEvent creates a CloudEvent of the given type with data serialized
// as JSON.
func NewCloudEvent(source, eventType string, data interface{}) (CloudEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return CloudEvent{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return CloudEvent{
		ID:     uuid.New().String(),
		Source: source,
		Type:   eventType,
		Time:   time.Now().UTC(),
		Data:   raw,
	}, nil
}

// ParseCloudEvent deserializes a CloudEvent from raw bytes.
func ParseCloudEvent(raw []byte) (CloudEvent, error) {
	var ce CloudEvent
	if err := json.Unmarshal(raw, &ce); err != nil {
		return CloudEvent{}, fmt.Errorf("failed to parse cloud event: %w", err)
	}
	return ce, nil
}

// ParseData deserializes the event payload into dst.
func (e CloudEvent) ParseData(dst interface{}) error {
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("failed to parse event data: %w", err)
	}
	return nil
}
