package m2web

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "api failure shows http status",
			err:  &Error{Code: 403, Kind: KindInvalidCredentials, Message: "Invalid credentials"},
			want: "HTTP 403: Invalid credentials",
		},
		{
			name: "no content shows http status",
			err:  &Error{Code: 204, Kind: KindNoContent, Message: "no eWONs were returned by the API"},
			want: "HTTP 204: no eWONs were returned by the API",
		},
		{
			name: "parse failure has its own prefix",
			err:  &Error{Code: 500, Kind: KindResponseParsing, Message: "JSON response syntax error: bad token"},
			want: "unable to parse JSON response: JSON response syntax error: bad token",
		},
		{
			name: "unknown failure has its own prefix",
			err:  &Error{Code: 500, Kind: KindUnknown, Message: "unknown error occurred"},
			want: "unknown error: unknown error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	base := &Error{Code: 403, Kind: KindInvalidCredentials, Message: "Invalid credentials"}

	same := &Error{Code: 403, Kind: KindInvalidCredentials, Message: "Invalid credentials"}
	if !errors.Is(base, same) {
		t.Error("errors.Is() = false for structurally equal errors")
	}

	differentMessage := &Error{Code: 403, Kind: KindInvalidCredentials, Message: "other"}
	if errors.Is(base, differentMessage) {
		t.Error("errors.Is() = true for different messages")
	}

	differentKind := &Error{Code: 403, Kind: KindEmptyResponse, Message: "Invalid credentials"}
	if errors.Is(base, differentKind) {
		t.Error("errors.Is() = true for different kinds")
	}

	if errors.Is(base, fmt.Errorf("HTTP 403: Invalid credentials")) {
		t.Error("errors.Is() = true for a plain error with the same text")
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := map[ErrorKind]string{
		KindUnknown:            "unknown",
		KindInvalidCredentials: "invalid_credentials",
		KindStatelessAuthSet:   "stateless_auth_set",
		KindNoContent:          "no_content",
		KindMissingParameter:   "missing_parameter",
		KindEmptyResponse:      "empty_response",
		KindResponseParsing:    "response_parsing",
		KindInternal:           "internal_error",
		KindClientConsumed:     "client_consumed",
	}

	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
