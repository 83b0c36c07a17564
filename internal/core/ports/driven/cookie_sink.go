package driven

import (
	"context"
	"time"
)

// CookieSink queues a cookie for the response of the current request.
// It is fire-and-forget: nothing is returned and nothing is guaranteed.
type CookieSink interface {
	Queue(ctx context.Context, name, value string, ttl time.Duration)
}
