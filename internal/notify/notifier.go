package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Outcome records which providers were attempted for one notification.
// Informational only: the pipeline never retries based on it.
type Outcome struct {
	Provider string // provider that succeeded, or last one attempted
	Err      error  // nil when a provider accepted the message
}

// Notifier tries the primary sender first and falls back to the secondary
// when the primary is unconfigured or its send fails. At most one attempt
// per provider per call.
type Notifier struct {
	primary   Sender // nil when unconfigured
	secondary Sender // nil when unconfigured
	log       zerolog.Logger
}

// New creates a Notifier. Either sender may be nil.
func New(primary, secondary Sender, log zerolog.Logger) *Notifier {
	return &Notifier{primary: primary, secondary: secondary, log: log}
}

// Notify delivers body to recipient, best-effort.
func (n *Notifier) Notify(ctx context.Context, recipient, body string) Outcome {
	if n.primary != nil {
		err := n.primary.Send(ctx, recipient, body)
		if err == nil {
			return Outcome{Provider: "twilio"}
		}
		n.log.Error().Err(err).Str("recipient", recipient).Msg("primary send failed, trying fallback")
		if n.secondary == nil {
			return Outcome{Provider: "twilio", Err: err}
		}
	}

	if n.secondary == nil {
		n.log.Error().Str("recipient", recipient).Msg("no sender configured, reply dropped")
		return Outcome{Err: ErrNoSender}
	}

	if err := n.secondary.Send(ctx, recipient, body); err != nil {
		n.log.Error().Err(err).Str("recipient", recipient).Msg("fallback send failed")
		return Outcome{Provider: "meta", Err: err}
	}
	return Outcome{Provider: "meta"}
}

// ErrNoSender is reported when neither provider is configured.
var ErrNoSender = errors.New("notify: no sender configured")
