package notify

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docsearch/internal/logger"
)

// FXModule selects the Mailer implementation: the SMTP relay when one is
// configured, the logging fallback otherwise.
var FXModule = fx.Module("notify",
	fx.Provide(
		NewConfig,
		NewMailer,
	),
)

// NewMailer picks the implementation for the configured environment.
func NewMailer(cfg Config, log *logger.Logger) Mailer {
	if cfg.Host != "" && cfg.Sender != "" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
