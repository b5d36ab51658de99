package publishers

import (
	"context"

	"github.com/samvad-hq/petfriends-verifier/internal/logger"
)

// Publisher sends run reports to a downstream sink (SQS, SNS, Pub/Sub, HTTP).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, report Report) error
	Close() error
}

// Logger is the logging surface publishers write to.
type Logger = logger.Logger

func ensureLogger(log Logger) Logger {
	return logger.Ensure(log)
}
