// Package events defines the telemetry event model consumed from the device telemetry topic.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageType classifies a telemetry event and selects the workflow that handles it.
type MessageType int

const (
	// Alarm carries PLC alarm/warning data for a device.
	Alarm MessageType = 0
	// Status carries sensor status data for a device.
	Status MessageType = 1
	// Acknowledgement confirms a previously issued command.
	Acknowledgement MessageType = 2
	// DeviceState reports a device's connection state.
	DeviceState MessageType = 3
	// AutoCommand requests an automatic speed or power command.
	AutoCommand MessageType = 4
)

// String returns a human-readable name for logging.
func (m MessageType) String() string {
	switch m {
	case Alarm:
		return "alarm"
	case Status:
		return "status"
	case Acknowledgement:
		return "acknowledgement"
	case DeviceState:
		return "device_state"
	case AutoCommand:
		return "auto_command"
	default:
		return fmt.Sprintf("unknown(%d)", int(m))
	}
}

// Event is one decoded telemetry message. Field names follow the device
// firmware's JSON contract, which mixes PascalCase and snake_case keys.
type Event struct {
	ID          string      `json:"id"`
	DeviceID    string      `json:"DeviceId"`
	MessageType MessageType `json:"MessageType"`
	Alarm       string      `json:"Alarm"`
	Warning     string      `json:"Warning"`
	CustomerID  string      `json:"CustomerId"`
	CommandID   string      `json:"CommandId"`
	AutoFlag    string      `json:"auto_flag"`
	Speed       string      `json:"speed"`
	Power       string      `json:"power"`
}

// Decode parses a raw event body into an Event.
// The event ID is always regenerated, discarding any caller-supplied value:
// downstream processing requires a process-locally unique id, and device
// firmware has been observed reusing ids across retries.
func Decode(raw []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode event body: %w", err)
	}
	ev.ID = uuid.NewString()
	return &ev, nil
}

// Routable reports whether the event carries enough identity to be routed.
// Events without a device id are skipped silently, not treated as errors.
func (e *Event) Routable() bool {
	return e.ID != "" && e.DeviceID != ""
}
