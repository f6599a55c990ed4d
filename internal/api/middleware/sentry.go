package middleware

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// SentryMiddleware opens a transaction per request and scopes the tags the
// dashboards filter on (request_id, user_id). It is a no-op when Sentry was
// never initialized.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		transactionName := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		options := []sentry.SpanOption{
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
		}
		if sentryTrace := r.Header.Get("sentry-trace"); sentryTrace != "" {
			options = append(options, sentry.ContinueFromHeaders(sentryTrace, r.Header.Get("baggage")))
		}

		transaction := sentry.StartTransaction(r.Context(), transactionName, options...)
		defer transaction.Finish()

		ctx := sentry.SetHubOnContext(transaction.Context(), hub)
		r = r.WithContext(ctx)

		hub.Scope().SetContext("request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"query":       r.URL.RawQuery,
			"remote_addr": r.RemoteAddr,
		})

		if requestID := GetRequestID(r.Context()); requestID != "" {
			hub.Scope().SetTag("request_id", requestID)
			transaction.SetTag("request_id", requestID)
		}
		if userAgent := r.UserAgent(); userAgent != "" {
			hub.Scope().SetTag("user_agent", userAgent)
		}

		defer func() {
			if err := recover(); err != nil {
				transaction.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), err)
				// re-panic so outer recovery still sees it
				panic(err)
			}
		}()

		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}

		transaction.Status = httpStatusToSpanStatus(status)
		transaction.SetData("http.response.status_code", status)

		// The user tag can only attach after JWTAuth has resolved the
		// identity; it hands it out through the X-User-ID request header.
		userID := GetUserID(r.Context())
		if userID == "" {
			userID = r.Header.Get("X-User-ID")
		}
		if userID != "" {
			hub.Scope().SetTag("user_id", userID)
			transaction.SetTag("user_id", userID)
		}

		// 5xx responses without a panic still deserve an event
		if status >= 500 {
			hub.CaptureMessage(fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)))
		}
	})
}

func httpStatusToSpanStatus(status int) sentry.SpanStatus {
	switch status {
	case http.StatusBadRequest:
		return sentry.SpanStatusInvalidArgument
	case http.StatusUnauthorized:
		return sentry.SpanStatusUnauthenticated
	case http.StatusForbidden:
		return sentry.SpanStatusPermissionDenied
	case http.StatusNotFound:
		return sentry.SpanStatusNotFound
	case http.StatusConflict:
		return sentry.SpanStatusAlreadyExists
	case http.StatusTooManyRequests:
		return sentry.SpanStatusResourceExhausted
	case 499:
		return sentry.SpanStatusCanceled
	case http.StatusNotImplemented:
		return sentry.SpanStatusUnimplemented
	case http.StatusServiceUnavailable:
		return sentry.SpanStatusUnavailable
	case http.StatusGatewayTimeout:
		return sentry.SpanStatusDeadlineExceeded
	}

	switch {
	case status >= 200 && status < 300:
		return sentry.SpanStatusOK
	case status >= 400 && status < 500:
		return sentry.SpanStatusInvalidArgument
	case status >= 500:
		return sentry.SpanStatusInternalError
	default:
		return sentry.SpanStatusUnknown
	}
}
