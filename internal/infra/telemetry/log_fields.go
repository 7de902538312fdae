package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldApp        = "app"
	FieldAction     = "action"
	FieldLocality   = "locality"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldEntityID   = "entity_id"
)

const (
	EventExecuteStart   = "execute_start"
	EventExecuteSuccess = "execute_success"
	EventExecuteFailure = "execute_failure"
	EventRemoteFetch    = "remote_fetch"
	EventCacheWrite     = "cache_write"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func DurationField(d time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, d.Milliseconds())
}
