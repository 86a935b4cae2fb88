// Package processor routes decoded telemetry events to their workflows:
// device alarm, device status, acknowledgement, device state, and auto command.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"fan-processor/internal/config"
	"fan-processor/internal/events"
)

const (
	noAlarm   = "No Alarm"
	noWarning = "No Warning"
)

// Directory resolves device identity and subscribed users.
type Directory interface {
	DeviceID(ctx context.Context, externalID string) (int64, bool, error)
	DeviceName(ctx context.Context, externalID string) (string, bool, error)
	RecipientTags(ctx context.Context, deviceID int64) ([]string, error)
}

// Gateway posts a payload to the REST collaborator and returns the response body.
type Gateway interface {
	Post(ctx context.Context, url string, body string) (string, error)
}

// Notifier fans a notification out to the given recipient tags.
type Notifier interface {
	Send(ctx context.Context, message string, tags []string, appleAlert string)
}

// Router dispatches one event to the workflow matching its message type.
type Router struct {
	directory Directory
	gateway   Gateway
	notifier  Notifier
	endpoints config.Endpoints
}

// NewRouter creates a router over the given collaborators.
func NewRouter(directory Directory, gateway Gateway, notifier Notifier, endpoints config.Endpoints) *Router {
	return &Router{
		directory: directory,
		gateway:   gateway,
		notifier:  notifier,
		endpoints: endpoints,
	}
}

// Route runs the workflow for the event. The raw payload is forwarded to the
// gateway verbatim where the workflow requires it. Message types outside the
// known set consume the event without any external call. Gateway failures are
// logged and suppress the event's notification steps; store failures are
// returned so the caller can abandon the event.
func (r *Router) Route(ctx context.Context, ev *events.Event, raw []byte) error {
	switch ev.MessageType {
	case events.Alarm:
		slog.Info("Device alarm scenario", "event_id", ev.ID, "device_id", ev.DeviceID)
		return r.handleAlarm(ctx, ev, raw)
	case events.Status:
		slog.Info("Device status scenario", "event_id", ev.ID, "device_id", ev.DeviceID)
		return r.handleStatus(ctx, ev, raw)
	case events.Acknowledgement:
		slog.Info("Acknowledgement scenario", "event_id", ev.ID, "device_id", ev.DeviceID)
		return r.handleAcknowledgement(ctx, ev)
	case events.DeviceState:
		slog.Info("Device state scenario", "event_id", ev.ID, "device_id", ev.DeviceID)
		return r.handleDeviceState(ctx, ev)
	case events.AutoCommand:
		slog.Info("Device auto command scenario", "event_id", ev.ID, "device_id", ev.DeviceID)
		return r.handleAutoCommand(ctx, ev)
	default:
		slog.Debug("Unhandled message type, dropping event",
			"event_id", ev.ID,
			"message_type", ev.MessageType,
		)
		return nil
	}
}

// alarmBody is the notification message body for alarm and warning fanouts.
type alarmBody struct {
	Message    string    `json:"message"`
	StatusCode string    `json:"statusCode"`
	Data       alarmData `json:"data"`
}

type alarmData struct {
	DeviceID       string `json:"deviceId"`
	IsDeviceStatus bool   `json:"isDeviceStatus"`
}

// handleAlarm posts the raw payload to the alarms endpoint and, when an alarm
// or warning condition is present and the post succeeded, notifies the
// device's subscribed users.
func (r *Router) handleAlarm(ctx context.Context, ev *events.Event, raw []byte) error {
	response, gwErr := r.gateway.Post(ctx, r.endpoints.SetAlarms, string(raw))
	if gwErr != nil {
		slog.Error("Gateway call failed for device alarm", "event_id", ev.ID, "error", gwErr)
	} else {
		slog.Info("Response for device alarm", "event_id", ev.ID, "response", response)
	}

	var title string
	switch {
	case ev.Alarm != noAlarm:
		title = "Alarm"
	case ev.Warning != noWarning:
		title = "Warning"
	default:
		// Neither condition present: nothing to notify.
		return nil
	}

	if gwErr != nil {
		return nil
	}

	deviceID, ok, err := r.directory.DeviceID(ctx, ev.DeviceID)
	if err != nil {
		return err
	}
	if !ok {
		slog.Warn("Device not found, skipping alarm notification", "device_id", ev.DeviceID)
		return nil
	}

	deviceName, _, err := r.directory.DeviceName(ctx, ev.DeviceID)
	if err != nil {
		return err
	}

	body, err := json.Marshal(alarmBody{
		Message:    fmt.Sprintf("%s has Occurred in %s", title, deviceName),
		StatusCode: "SUCCESS",
		Data: alarmData{
			DeviceID:       ev.DeviceID,
			IsDeviceStatus: false,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alarm message: %w", err)
	}

	tags, err := r.directory.RecipientTags(ctx, deviceID)
	if err != nil {
		return err
	}

	r.notifier.Send(ctx, string(body), tags, fmt.Sprintf("%s has Occurred in %s", title, ev.DeviceID))
	return nil
}

// handleStatus posts the raw payload to the status endpoint and forwards the
// gateway's response body as the notification message.
func (r *Router) handleStatus(ctx context.Context, ev *events.Event, raw []byte) error {
	response, err := r.gateway.Post(ctx, r.endpoints.SetStatus, string(raw))
	if err != nil {
		slog.Error("Gateway call failed for device status", "event_id", ev.ID, "error", err)
		return nil
	}
	slog.Info("Response for device status", "event_id", ev.ID, "response", response)

	deviceID, ok, dirErr := r.directory.DeviceID(ctx, ev.DeviceID)
	if dirErr != nil {
		return dirErr
	}
	if !ok {
		slog.Warn("Device not found, skipping status notification", "device_id", ev.DeviceID)
		return nil
	}

	tags, dirErr := r.directory.RecipientTags(ctx, deviceID)
	if dirErr != nil {
		return dirErr
	}

	r.notifier.Send(ctx, response, tags, "")
	return nil
}

// handleAcknowledgement forwards a command acknowledgement; no fanout.
func (r *Router) handleAcknowledgement(ctx context.Context, ev *events.Event) error {
	url := joinURL(r.endpoints.SendAcknowledgement, ev.CommandID)
	response, err := r.gateway.Post(ctx, url, "")
	if err != nil {
		slog.Error("Gateway call failed for acknowledgement", "event_id", ev.ID, "error", err)
		return nil
	}
	slog.Info("Response for acknowledgement", "event_id", ev.ID, "response", response)
	return nil
}

// handleDeviceState reports a device's state; no fanout.
func (r *Router) handleDeviceState(ctx context.Context, ev *events.Event) error {
	url := joinURL(r.endpoints.SendDeviceState, ev.CustomerID, ev.DeviceID)
	response, err := r.gateway.Post(ctx, url, "")
	if err != nil {
		slog.Error("Gateway call failed for device state", "event_id", ev.ID, "error", err)
		return nil
	}
	slog.Info("Response for device state", "event_id", ev.ID, "response", response)
	return nil
}

// handleAutoCommand issues a speed or power command depending on the event's
// auto flag. Any other flag value makes no outbound call.
func (r *Router) handleAutoCommand(ctx context.Context, ev *events.Event) error {
	var url string
	switch ev.AutoFlag {
	case "1":
		url = joinURL(r.endpoints.SpeedCommand, ev.CustomerID, ev.DeviceID, ev.Speed)
	case "0":
		url = joinURL(r.endpoints.PowerCommand, ev.CustomerID, ev.DeviceID, ev.Power)
	default:
		slog.Warn("Unknown auto flag, skipping command",
			"event_id", ev.ID,
			"auto_flag", ev.AutoFlag,
		)
		return nil
	}

	response, err := r.gateway.Post(ctx, url, "")
	if err != nil {
		slog.Error("Gateway call failed for auto command", "event_id", ev.ID, "error", err)
		return nil
	}
	slog.Info("Response for auto command", "event_id", ev.ID, "response", response)
	return nil
}

// joinURL appends path segments to base with single slashes.
func joinURL(base string, parts ...string) string {
	joined := strings.TrimSuffix(base, "/")
	for _, p := range parts {
		joined += "/" + strings.Trim(p, "/")
	}
	return joined
}
