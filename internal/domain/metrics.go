package domain

import "time"

// ExecuteStatus labels the outcome of an executed action.
type ExecuteStatus string

const (
	// ExecuteStatusSuccess indicates the action returned a success payload.
	ExecuteStatusSuccess ExecuteStatus = "success"
	// ExecuteStatusFailed indicates the action returned a failure payload.
	ExecuteStatusFailed ExecuteStatus = "failed"
	// ExecuteStatusError indicates the call aborted before producing a payload.
	ExecuteStatusError ExecuteStatus = "error"
)

// ResolveSource labels which namespace satisfied a slug resolution.
type ResolveSource string

const (
	// ResolveSourceStatic indicates a statically declared member matched.
	ResolveSourceStatic ResolveSource = "static"
	// ResolveSourceRuntime indicates the runtime-registered table matched.
	ResolveSourceRuntime ResolveSource = "runtime"
	// ResolveSourceLocal indicates a local registry table matched.
	ResolveSourceLocal ResolveSource = "local"
	// ResolveSourceDeprecated indicates a deprecation alias was substituted.
	ResolveSourceDeprecated ResolveSource = "deprecated"
)

// Metrics is the observation surface for the toolset. Implementations must
// tolerate being nil-checked by callers; all methods are synchronous.
type Metrics interface {
	ObserveExecute(app string, locality Locality, status ExecuteStatus, duration time.Duration)
	ObserveResolve(kind EntityKind, source ResolveSource)
	ObserveRemoteFetch(kind EntityKind, duration time.Duration, err error)
	ObserveCacheHit(kind EntityKind, tier string)
}
