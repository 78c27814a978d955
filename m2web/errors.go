package m2web

import "fmt"

// ErrorKind classifies the failures a client operation can return.
type ErrorKind int

// Error kinds, one per failure class of the M2Web API surface.
const (
	// KindUnknown covers transport failures and unclassified API statuses.
	KindUnknown ErrorKind = iota

	// KindInvalidCredentials is returned on HTTP 403 from the API, or when a
	// session-gated operation is called before a session has been opened.
	KindInvalidCredentials

	// KindStatelessAuthSet is returned when Login or Logout is called on a
	// client configured for stateless authentication.
	KindStatelessAuthSet

	// KindNoContent is returned when the API answers a device listing with
	// zero devices.
	KindNoContent

	// KindMissingParameter is returned on HTTP 400 from the API, indicating
	// a missing or malformed request parameter.
	KindMissingParameter

	// KindEmptyResponse is returned on HTTP 410 from the API.
	KindEmptyResponse

	// KindResponseParsing is returned when the response body could not be
	// decoded into the API envelope.
	KindResponseParsing

	// KindInternal is returned for client-side usage errors, such as an
	// empty endpoint name handed to the request layer.
	KindInternal

	// KindClientConsumed is returned for any operation attempted after a
	// successful Logout closed the client.
	KindClientConsumed
)

// String returns a short name for the kind, used in error output and tests.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindStatelessAuthSet:
		return "stateless_auth_set"
	case KindNoContent:
		return "no_content"
	case KindMissingParameter:
		return "missing_parameter"
	case KindEmptyResponse:
		return "empty_response"
	case KindResponseParsing:
		return "response_parsing"
	case KindInternal:
		return "internal_error"
	case KindClientConsumed:
		return "client_consumed"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by every client operation.
//
// Code mirrors the HTTP status the API answered with where one applies,
// otherwise 500. Equality is structural: two errors are equal when code,
// kind and message all match, which is how the tests assert outcomes.
type Error struct {
	// Code is the HTTP status associated with the failure, or 500 when no
	// HTTP status applies (204 for an empty device list).
	Code int

	// Kind is the failure class.
	Kind ErrorKind

	// Message is a human-readable description suitable for direct display.
	// For API-reported failures it carries the message field of the
	// response envelope.
	Message string
}

// Error formats the failure for display. API and usage failures show the
// HTTP status; parse failures and unclassified errors use their own prefix.
func (e *Error) Error() string {
	switch e.Kind {
	case KindResponseParsing:
		return fmt.Sprintf("unable to parse JSON response: %s", e.Message)
	case KindUnknown:
		return fmt.Sprintf("unknown error: %s", e.Message)
	default:
		return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
	}
}

// Is reports structural equality against another *Error, so callers can
// match exact failures with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind && e.Message == t.Message
}
