package app

import "github.com/thenoetrevino/nutriboard/internal/events"

// Option configures New
type Option func(*appConfig)

type appConfig struct {
	eventClient events.EventPublisher
}

// WithEventPublisher makes every service announce board changes through ec.
// Without it the services work silently.
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}
