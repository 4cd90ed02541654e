package errors

// Code represents an error code
type Code string

// Error codes grouped by recovery behavior: input errors are rejected before
// dispatch, upstream errors become apologetic reply text, internal errors are
// the catch-all that never crosses the transport.
const (
	CodeUnknown              Code = "UNKNOWN"               // Unknown error occurred
	CodeInternalError        Code = "INTERNAL_ERROR"        // Internal system error
	CodeInvalidParameter     Code = "INVALID_PARAMETER"     // Invalid parameter provided
	CodeMissingParameter     Code = "MISSING_PARAMETER"     // Required parameter missing
	CodeNotFound             Code = "NOT_FOUND"             // Package, repo, docs, or status page not found
	CodeUpstreamUnavailable  Code = "UPSTREAM_UNAVAILABLE"  // Upstream service unreachable
	CodeUpstreamTimeout      Code = "UPSTREAM_TIMEOUT"      // Upstream call exceeded its deadline
	CodeUpstreamMalformed    Code = "UPSTREAM_MALFORMED"    // Upstream returned unexpected data
	CodeUpstreamForbidden    Code = "UPSTREAM_FORBIDDEN"    // Upstream refused the request (401/403)
	CodeRateLimited          Code = "RATE_LIMITED"          // Upstream rate limit hit
	CodeIoError              Code = "IO_ERROR"              // Input/output operation failed
	CodeConfigurationInvalid Code = "CONFIGURATION_INVALID" // Configuration invalid
	CodeToolNotFound         Code = "TOOL_NOT_FOUND"        // Tool not found in the registry
	CodeToolExecutionFailed  Code = "TOOL_EXECUTION_FAILED" // Tool execution failed
)
