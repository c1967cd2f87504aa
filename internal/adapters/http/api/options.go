package api

import (
	"time"

	"github.com/okian/skillmonitor/pkg/logger"
)

const defaultHeartbeat = 15 * time.Second

type options struct {
	logger    logger.Logger
	heartbeat time.Duration
}

func defaultOptions() options {
	return options{logger: logger.Nop(), heartbeat: defaultHeartbeat}
}

// Option configures the Server.
type Option func(*options)

// WithLogger sets the handlers' logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l.Named("http")
		}
	}
}

// WithHeartbeat sets how often idle event streams are pinged.
func WithHeartbeat(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.heartbeat = d
		}
	}
}
