package push

import (
	"context"
	"log/slog"

	"fan-processor/internal/retry"
)

// Fanout sends one logical notification to every recipient tag on both
// channels. Recipients are handled sequentially; a dispatch failure for one
// recipient is logged and does not halt fanout to the remaining recipients.
type Fanout struct {
	sender   Sender
	retryCfg retry.Config
}

// NewFanout creates a fanout over the given sender.
func NewFanout(sender Sender) *Fanout {
	return &Fanout{
		sender:   sender,
		retryCfg: retry.DefaultConfig(),
	}
}

// Send builds and dispatches the channel payloads for message to each tag.
// appleAlert overrides the APNS alert title; empty selects the default.
// Fanout over an empty tag list is a no-op.
func (f *Fanout) Send(ctx context.Context, message string, tags []string, appleAlert string) {
	for _, tag := range tags {
		f.dispatchAndroid(ctx, message, tag)
		f.dispatchApple(ctx, message, tag, appleAlert)
	}
}

func (f *Fanout) dispatchAndroid(ctx context.Context, message string, tag string) {
	payload, err := BuildAndroid(message)
	if err != nil {
		slog.Error("Failed to build android payload", "tag", tag, "error", err)
		return
	}

	err = retry.WithRetry(ctx, f.retryCfg, "push_android", func() error {
		return f.sender.SendAndroid(ctx, payload, tag)
	})
	if err != nil {
		slog.Error("Failed to send android notification", "tag", tag, "error", err)
		return
	}

	slog.Info("Pushed android notification", "tag", tag, "payload", string(payload))
}

func (f *Fanout) dispatchApple(ctx context.Context, message string, tag string, appleAlert string) {
	payload, err := BuildApple(message, appleAlert)
	if err != nil {
		slog.Error("Failed to build apple payload", "tag", tag, "error", err)
		return
	}

	err = retry.WithRetry(ctx, f.retryCfg, "push_apple", func() error {
		return f.sender.SendApple(ctx, payload, tag)
	})
	if err != nil {
		slog.Error("Failed to send apple notification", "tag", tag, "error", err)
		return
	}

	slog.Info("Pushed apple notification", "tag", tag, "payload", string(payload))
}
