// Package llm wraps the outbound model provider behind a single invoke
// contract: one call, a per-stage timeout, transparent retries for transient
// provider failures, and a distinguished result for timeouts.
package llm

import (
	"time"
)

// OutputContract selects how strictly the provider constrains its output.
type OutputContract int

const (
	// ContractStrict asks the provider to enforce the full answer schema.
	// Used for primary generation attempts.
	ContractStrict OutputContract = iota
	// ContractJSON only requires a valid JSON object. Used for repair
	// passes, where re-applying the strict schema to already-malformed
	// content tends to fail for unrelated provider-side reasons.
	ContractJSON
)

// InvokeStatus classifies the outcome of an invocation.
type InvokeStatus int

const (
	// StatusOK means the provider returned extractable text.
	StatusOK InvokeStatus = iota
	// StatusAborted means the per-stage timeout elapsed or the caller
	// canceled; never retried, reported distinctly from other failures.
	StatusAborted
	// StatusTruncated means the model ran out of output tokens; callers
	// treat it like a schema failure.
	StatusTruncated
	// StatusFailed covers provider errors that survived the retry loop.
	StatusFailed
)

// InvokeRequest describes one model call.
type InvokeRequest struct {
	System      string
	User        string
	Contract    OutputContract
	MaxTokens   int32
	Temperature float32
	// Timeout bounds this call including its internal retries.
	Timeout time.Duration
}

// InvokeResult carries the provider outcome. Parsed is nil when the raw text
// is not a JSON object; Raw is kept so repair passes can feed it back.
type InvokeResult struct {
	Status     InvokeStatus
	HTTPStatus int
	Message    string
	Parsed     map[string]interface{}
	Raw        string
}

// retryableStatus reports whether a provider HTTP status is worth another
// attempt. Rate limits and server-side errors are; client errors are not.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}
