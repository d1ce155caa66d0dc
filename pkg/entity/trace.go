package entity

// Trace is the structured query trace returned by a Portal client alongside
// (or instead of, on ContentNotFound) the fetched bytes, per the wire
// contract in spec.md §6.
type Trace struct {
	StartedAtMs    int64                `json:"started_at_ms"`
	Origin         string               `json:"origin"`
	ReceivedFrom   string               `json:"received_from,omitempty"`
	TargetID       string               `json:"target_id"`
	Responses      map[string]Response  `json:"responses"`
	Metadata       map[string]Metadata  `json:"metadata"`
	Failures       map[string]Failure   `json:"failures"`
}

// Response is one hop's timing and fan-out within a Trace.
type Response struct {
	DurationMs    int64    `json:"duration_ms"`
	RespondedWith []string `json:"responded_with"`
}

// Metadata carries the ENR a trace's NodeID keys resolve to.
type Metadata struct {
	Enr string `json:"enr"`
}

// Failure is the raw wire form of a per-hop transfer failure, keyed by the
// sender's NodeID within Trace.Failures.
type Failure struct {
	FailureKind string `json:"failure"`
}

// IsEmpty reports whether the trace carries no responses, no metadata, and
// no failures, used by the trace-serialization policy in spec.md §4.7.
func (t Trace) IsEmpty() bool {
	return len(t.Responses) == 0 && len(t.Metadata) == 0 && len(t.Failures) == 0
}

// HasFailures reports whether the trace recorded at least one per-hop
// failure.
func (t Trace) HasFailures() bool {
	return len(t.Failures) > 0
}

// ParseFailureKind maps the wire failure string to the FailureKind enum.
func ParseFailureKind(s string) (FailureKind, bool) {
	switch s {
	case "InvalidContent":
		return FailureInvalidContent, true
	case "UtpConnectionFailed":
		return FailureUTPConnectionFailed, true
	case "UtpTransferFailed":
		return FailureUTPTransferFailed, true
	default:
		return 0, false
	}
}
