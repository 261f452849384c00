package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guardrail/logger"
)

// RequestTimeoutConfig configures the request deadline middleware.
type RequestTimeoutConfig struct {
	// Timeout bounds the whole handler chain.
	Timeout time.Duration
	// Logger receives expiry events. Nil uses the default.
	Logger *logger.Logger
}

// RequestTimeout returns a Gin middleware that bounds the handler chain with
// a deadline. When the deadline fires before the response is written, the
// client receives 408 with a JSON body carrying error, message, and timeout
// fields, and any later write from the still-running handler is silently
// dropped. If the response already started, the expiry is a no-op.
func RequestTimeout(cfg RequestTimeoutConfig) gin.HandlerFunc {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := logger.OrDefault(cfg.Logger).WithComponent("timeout")

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		tw := &deadlineWriter{ResponseWriter: c.Writer}
		c.Writer = tw

		done := make(chan struct{})
		panicked := make(chan any, 1)
		go func() {
			defer func() {
				if p := recover(); p != nil {
					panicked <- p
				}
			}()
			c.Next()
			close(done)
		}()

		select {
		case <-done:
		case p := <-panicked:
			panic(p)
		case <-ctx.Done():
			// The handler keeps running in the background; it is never
			// forcibly stopped, its writes just no longer reach the client.
			if tw.expire() {
				log.Warn("request deadline exceeded", logger.Fields(
					logger.FieldOperation, c.Request.Method+" "+c.Request.URL.Path,
					logger.FieldTimeout, cfg.Timeout.Milliseconds(),
				))
				writeTimeoutResponse(tw.ResponseWriter, cfg.Timeout)
			}
			c.Abort()
		}
	}
}

func writeTimeoutResponse(w gin.ResponseWriter, d time.Duration) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusRequestTimeout)
	body := `{"error":"REQUEST_TIMEOUT","message":"The request took too long to process.","timeout":` +
		strconv.FormatInt(d.Milliseconds(), 10) + `}`
	_, _ = w.Write([]byte(body))
}

// deadlineWriter suppresses handler writes once the deadline has expired.
// Expiry only takes effect if nothing has been written yet, so a response
// already in flight is left alone.
type deadlineWriter struct {
	gin.ResponseWriter
	mu      sync.Mutex
	expired bool
}

// expire marks the exchange as timed out. Returns false when the response
// has already started, in which case no timeout body may be written.
func (w *deadlineWriter) expire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired || w.Written() {
		return false
	}
	w.expired = true
	return true
}

func (w *deadlineWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *deadlineWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

func (w *deadlineWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.expired {
		return len(s), nil
	}
	return w.ResponseWriter.WriteString(s)
}
