// Package push builds channel-specific notification payloads and fans them
// out to the subscribed users of a device through the push hub.
package push

import (
	"encoding/json"
	"fmt"
)

// DefaultAppleAlert is the alert title used for status notifications when the
// caller does not supply one.
const DefaultAppleAlert = "DeviceStatus"

// androidPayload is the FCM-style payload shape: the message is carried under
// a "data" envelope so the client app receives it as a data notification.
type androidPayload struct {
	Data androidData `json:"data"`
}

type androidData struct {
	Message json.RawMessage `json:"message"`
}

// applePayload is the APNS-style payload shape: a short alert title plus the
// full message under "alert2".
type applePayload struct {
	APS aps `json:"aps"`
}

type aps struct {
	Alert  string          `json:"alert"`
	Alert2 json.RawMessage `json:"alert2"`
}

// BuildAndroid builds the FCM-style payload embedding message.
func BuildAndroid(message string) ([]byte, error) {
	payload := androidPayload{
		Data: androidData{Message: rawMessage(message)},
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal android payload: %w", err)
	}
	return out, nil
}

// BuildApple builds the APNS-style payload embedding message under the given
// alert title. An empty title falls back to DefaultAppleAlert.
func BuildApple(message string, alertTitle string) ([]byte, error) {
	if alertTitle == "" {
		alertTitle = DefaultAppleAlert
	}
	payload := applePayload{
		APS: aps{Alert: alertTitle, Alert2: rawMessage(message)},
	}
	out, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal apple payload: %w", err)
	}
	return out, nil
}

// rawMessage embeds message as-is when it is already valid JSON (the usual
// case: workflow messages and gateway responses are JSON documents) and as a
// JSON string otherwise.
func rawMessage(message string) json.RawMessage {
	if json.Valid([]byte(message)) {
		return json.RawMessage(message)
	}
	quoted, _ := json.Marshal(message)
	return json.RawMessage(quoted)
}
