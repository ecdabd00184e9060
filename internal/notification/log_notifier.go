package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the structured log. Used in dev and as
// a fallback when no delivery backend is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, recipientID uuid.UUID, channel, message string) error {
	n.log.Info().
		Str("recipient_id", recipientID.String()).
		Str("channel", channel).
		Str("message", message).
		Msg("notification")
	return nil
}
