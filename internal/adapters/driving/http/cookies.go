package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure CookieQueue implements CookieSink
var _ driven.CookieSink = (*CookieQueue)(nil)

const cookieQueueKey contextKey = "cookie_queue"

type queuedCookie struct {
	name  string
	value string
	ttl   time.Duration
}

// pendingCookies holds cookies queued during one request
type pendingCookies struct {
	mu      sync.Mutex
	cookies []queuedCookie
	flushed bool
}

func (p *pendingCookies) add(c queuedCookie) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.flushed {
		return false
	}
	p.cookies = append(p.cookies, c)
	return true
}

func (p *pendingCookies) drain() []queuedCookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.flushed {
		return nil
	}
	p.flushed = true
	return p.cookies
}

// CookieQueue lets the core queue cookies for the current response.
// Values are signed when the response headers are written.
type CookieQueue struct {
	signer driven.AuthAdapter
	secure bool
	logger *slog.Logger
}

// NewCookieQueue creates a CookieQueue signing values with signer
func NewCookieQueue(signer driven.AuthAdapter, secure bool, logger *slog.Logger) *CookieQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &CookieQueue{signer: signer, secure: secure, logger: logger}
}

// Queue adds a cookie to the current request's response. A non-positive ttl
// expires the cookie. Outside a request handled by Handler the cookie is dropped.
func (q *CookieQueue) Queue(ctx context.Context, name, value string, ttl time.Duration) {
	pending, ok := ctx.Value(cookieQueueKey).(*pendingCookies)
	if !ok {
		q.logger.DebugContext(ctx, "no cookie queue on context, dropping cookie", "cookie", name)
		return
	}
	if !pending.add(queuedCookie{name: name, value: value, ttl: ttl}) {
		q.logger.WarnContext(ctx, "cookie queued after headers were written", "cookie", name)
	}
}

// Forget expires a cookie on the current response
func (q *CookieQueue) Forget(ctx context.Context, name string) {
	q.Queue(ctx, name, "", -1)
}

// Handler installs a per-request queue and flushes it before the first header write
func (q *CookieQueue) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pending := &pendingCookies{}
		ctx := context.WithValue(r.Context(), cookieQueueKey, pending)
		fw := &cookieFlushWriter{ResponseWriter: w, flush: func() { q.flush(ctx, w, pending) }}

		next.ServeHTTP(fw, r.WithContext(ctx))

		// Handlers that never write still get their cookies
		fw.flushOnce()
	})
}

func (q *CookieQueue) flush(ctx context.Context, w http.ResponseWriter, pending *pendingCookies) {
	for _, c := range pending.drain() {
		cookie := &http.Cookie{
			Name:     c.name,
			Path:     "/",
			HttpOnly: true,
			Secure:   q.secure,
			SameSite: http.SameSiteLaxMode,
		}

		if c.ttl <= 0 {
			cookie.MaxAge = -1
		} else {
			signed, err := q.signer.SignCookie(c.name, c.value, c.ttl)
			if err != nil {
				q.logger.WarnContext(ctx, "failed to sign cookie", "cookie", c.name, "error", err)
				continue
			}
			cookie.Value = signed
			cookie.MaxAge = int(c.ttl / time.Second)
			cookie.Expires = time.Now().Add(c.ttl)
		}

		http.SetCookie(w, cookie)
	}
}

// readSignedCookie returns the verified value of a cookie set through the queue
func (q *CookieQueue) readSignedCookie(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return q.signer.ParseCookie(name, c.Value)
}

// cookieFlushWriter flushes queued cookies before the status line goes out
type cookieFlushWriter struct {
	http.ResponseWriter
	flush func()
	once  sync.Once
}

func (w *cookieFlushWriter) flushOnce() {
	w.once.Do(w.flush)
}

func (w *cookieFlushWriter) WriteHeader(code int) {
	w.flushOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieFlushWriter) Write(b []byte) (int, error) {
	w.flushOnce()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *cookieFlushWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
