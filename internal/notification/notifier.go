// Package notification delivers best-effort messages to patients. Failures
// are logged and never propagate into domain outcomes.
package notification

import (
	"context"

	"github.com/google/uuid"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
	ChannelApp   = "app"
)

type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, channel, message string) error
}
