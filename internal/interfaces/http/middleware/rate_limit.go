// Package middleware provides the gin middleware chain of the analytics API:
// rate limit admission and header decoration, request correlation, logging,
// and panic recovery.
package middleware

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsemetrics/analytics-api/internal/infrastructure/monitoring"
	"github.com/pulsemetrics/analytics-api/internal/infrastructure/ratelimit"
	"github.com/pulsemetrics/analytics-api/pkg/constants"
	"github.com/pulsemetrics/analytics-api/pkg/errors"
	"github.com/pulsemetrics/analytics-api/pkg/logger"
)

// IdentityFunc derives one half of a rate limit scope from the request.
type IdentityFunc func(c *gin.Context) string

// RouteIdentity is the default operation identity: the matched route pattern.
func RouteIdentity(c *gin.Context) string {
	return c.FullPath()
}

// CallerIdentity is the default caller identity: the request's source address.
func CallerIdentity(c *gin.Context) string {
	return c.ClientIP()
}

// RateLimitOptions configures one protected route or route group.
type RateLimitOptions struct {
	// Limit is the number of requests admitted per window. Must be positive.
	Limit int

	// Per is the window length in seconds. Must be positive.
	Per int

	// SendHeaders controls whether X-RateLimit-* headers are exposed.
	SendHeaders bool

	// OperationFn overrides the operation identity. Defaults to RouteIdentity.
	// Routes sharing an OperationFn value share a quota pool.
	OperationFn IdentityFunc

	// CallerFn overrides the caller identity. Defaults to CallerIdentity.
	CallerFn IdentityFunc
}

// DefaultRateLimitOptions returns options with header exposure enabled and the
// default scope functions.
func DefaultRateLimitOptions(limit, per int) RateLimitOptions {
	return RateLimitOptions{Limit: limit, Per: per, SendHeaders: true}
}

// rateLimitState is the per-request context slot written by the admission
// middleware and read by the header decorator.
type rateLimitState struct {
	result      *ratelimit.Result
	sendHeaders bool
}

// RateLimit wraps protected operations with a fixed-window admission check.
//
// The returned middleware performs one counter store round trip per request,
// attaches the result to the request context, and rejects with 429 when the
// scope's window quota is exhausted. If the counter store is unreachable the
// request is admitted without rate limit metadata: an unavailable store must
// never take down read traffic.
//
// Invalid options are a programming error and panic at construction time.
func RateLimit(limiter *ratelimit.FixedWindowLimiter, metrics *monitoring.Metrics, log logger.Logger, opts RateLimitOptions) gin.HandlerFunc {
	if opts.Limit <= 0 || opts.Per <= 0 {
		panic(fmt.Sprintf("middleware: rate limit requires positive limit and per, got limit=%d per=%d", opts.Limit, opts.Per))
	}

	operationFn := opts.OperationFn
	if operationFn == nil {
		operationFn = RouteIdentity
	}
	callerFn := opts.CallerFn
	if callerFn == nil {
		callerFn = CallerIdentity
	}

	return func(c *gin.Context) {
		scopeKey := constants.RateLimitKeyPrefix + operationFn(c) + "/" + callerFn(c) + "/"

		result, err := limiter.Hit(c.Request.Context(), scopeKey, opts.Limit, opts.Per)
		if err != nil {
			// Fail open. The store outage is logged and counted but never
			// surfaces as a user-visible failure of the wrapped operation.
			log.Warn(c.Request.Context(), "rate limit check failed, admitting request",
				logger.String("scope", scopeKey),
				logger.String("error", err.Error()),
			)
			metrics.RecordStoreError()
			c.Next()
			return
		}

		// Attach before the over-limit check so rejections carry headers too.
		c.Set(constants.ContextKeyRateLimit, &rateLimitState{
			result:      result,
			sendHeaders: opts.SendHeaders,
		})

		if result.OverLimit() {
			quotaErr := errors.ErrQuotaExceeded(scopeKey, opts.Limit)
			_ = c.Error(quotaErr)
			log.Warn(c.Request.Context(), "rate limit exceeded",
				logger.String("scope", scopeKey),
				logger.Int("limit", opts.Limit),
				logger.Int64("window_end", result.WindowEnd),
			)
			metrics.RecordRateLimitRejection(operationFn(c))
			c.AbortWithStatusJSON(quotaErr.HTTPStatus(), gin.H{
				"data":  "You hit the rate limit",
				"error": "429",
			})
			return
		}

		c.Next()
	}
}

// RateLimitHeaders decorates every response with rate limit metadata.
//
// It is installed once, globally, ahead of any admission middleware, and
// injects the X-RateLimit-* headers at the moment the response status is
// written, whether the protected operation succeeded, failed, or was rejected
// at admission. Requests with no attached result (unprotected routes, store
// outages) pass through untouched.
func RateLimitHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &rateLimitHeaderWriter{ResponseWriter: c.Writer, ctx: c}
		c.Next()
	}
}

// rateLimitHeaderWriter injects rate limit headers just before the first byte
// of the response is written, the point after which headers are immutable.
type rateLimitHeaderWriter struct {
	gin.ResponseWriter
	ctx      *gin.Context
	injected bool
}

func (w *rateLimitHeaderWriter) WriteHeader(code int) {
	w.inject()
	w.ResponseWriter.WriteHeader(code)
}

func (w *rateLimitHeaderWriter) Write(b []byte) (int, error) {
	w.inject()
	return w.ResponseWriter.Write(b)
}

func (w *rateLimitHeaderWriter) WriteString(s string) (int, error) {
	w.inject()
	return w.ResponseWriter.WriteString(s)
}

func (w *rateLimitHeaderWriter) WriteHeaderNow() {
	w.inject()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *rateLimitHeaderWriter) inject() {
	if w.injected {
		return
	}
	w.injected = true

	v, ok := w.ctx.Get(constants.ContextKeyRateLimit)
	if !ok {
		return
	}
	state, ok := v.(*rateLimitState)
	if !ok || !state.sendHeaders {
		return
	}

	h := w.ResponseWriter.Header()
	h.Set(constants.HeaderRateLimitRemaining, strconv.FormatInt(state.result.Remaining(), 10))
	h.Set(constants.HeaderRateLimitLimit, strconv.Itoa(state.result.Limit))
	h.Set(constants.HeaderRateLimitReset, strconv.FormatInt(state.result.WindowEnd, 10))
}
