// Package audit records every outbound carrier call for replay and
// diagnosis. One record is appended per HTTP round-trip, before the caller
// inspects the response, so failed calls stay recoverable.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Record is one outbound request/response pair. StatusCode is nil when the
// call never produced an HTTP response (transport failure).
type Record struct {
	ID              string    `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	AccountID       string    `json:"account_id,omitempty"`
	Endpoint        string    `json:"endpoint"`
	Method          string    `json:"method"`
	RequestPayload  string    `json:"request_payload"`
	StatusCode      *int      `json:"status_code,omitempty"`
	ResponsePayload string    `json:"response_payload"`
}

// Sink persists records append-only. Implementations: MemorySink, FileSink,
// AsyncSink, and the Postgres store in internal/store.
type Sink interface {
	Append(ctx context.Context, rec *Record) error
}

// Logger writes audit records to a sink. It never fails the business call:
// serialization is best-effort and sink errors are logged, not returned.
type Logger struct {
	sink  Sink
	zl    *otelzap.Logger
	nowFn func() time.Time
	newID func() string
}

// NewLogger creates an audit logger over a sink.
func NewLogger(sink Sink, zl *otelzap.Logger) *Logger {
	return &Logger{
		sink:  sink,
		zl:    zl,
		nowFn: time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Log appends one record for an outbound call. payload may be any JSON-
// marshalable request body or a pre-serialized string; status is nil when no
// response was received.
func (l *Logger) Log(ctx context.Context, accountID, endpoint, method string, payload any, status *int, response string) {
	rec := &Record{
		ID:              l.newID(),
		Timestamp:       l.nowFn().UTC(),
		AccountID:       accountID,
		Endpoint:        endpoint,
		Method:          method,
		RequestPayload:  Serialize(payload),
		StatusCode:      status,
		ResponsePayload: response,
	}
	if err := l.sink.Append(ctx, rec); err != nil && l.zl != nil {
		l.zl.Error("audit append failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}
}

// Serialize turns a request payload into stable text. Structured payloads
// are JSON-marshaled; strings and byte slices pass through; nil becomes "".
func Serialize(payload any) string {
	switch v := payload.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
