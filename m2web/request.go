package m2web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// API endpoint names, appended to Config.BaseURL.
const (
	endpointLogin    = "login"
	endpointLogout   = "logout"
	endpointGetEwons = "getewons"
	endpointGetEwon  = "getewon"
)

// queryParam is one key/value pair of the request query string. Parameters
// are kept as an ordered slice so authentication parameters always precede
// endpoint-specific ones.
type queryParam struct {
	key   string
	value string
}

// authParams selects the authentication parameters for one request.
//
// Stateless clients, and stateful clients performing a login, authenticate
// with the full credentials. Any other stateful request reuses the stored
// session token and fails before network I/O when no session is open.
func (c *Client) authParams(endpoint string) ([]queryParam, error) {
	if !c.cfg.StatefulAuth || endpoint == endpointLogin {
		return []queryParam{
			{"t2maccount", c.cfg.Account},
			{"t2musername", c.cfg.Username},
			{"t2mpassword", c.cfg.Password},
			{"t2mdeveloperid", c.cfg.DeveloperID},
		}, nil
	}

	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	if session == "" {
		return nil, &Error{
			Code:    403,
			Kind:    KindInvalidCredentials,
			Message: "no session opened, please login before requesting the API",
		}
	}
	return []queryParam{
		{"t2msession", session},
		{"t2mdeveloperid", c.cfg.DeveloperID},
	}, nil
}

// requestAPI performs one GET against {baseURL}/{endpoint} and classifies
// the outcome into an envelope or a typed error.
func (c *Client) requestAPI(ctx context.Context, endpoint string, params []queryParam) (apiResponse, error) {
	if endpoint == "" {
		return apiResponse{}, &Error{
			Code:    500,
			Kind:    KindInternal,
			Message: "no API endpoint provided",
		}
	}

	auth, err := c.authParams(endpoint)
	if err != nil {
		return apiResponse{}, err
	}
	query := encodeParams(append(auth, params...))

	target := c.cfg.BaseURL + "/" + endpoint + "?" + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return apiResponse{}, &Error{
			Code:    500,
			Kind:    KindInternal,
			Message: fmt.Sprintf("building request: %v", err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, &Error{
			Code:    500,
			Kind:    KindUnknown,
			Message: fmt.Sprintf("unknown error while requesting API: %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiResponse{}, &Error{
			Code:    500,
			Kind:    KindUnknown,
			Message: fmt.Sprintf("unknown error while requesting API: %v", err),
		}
	}

	envelope, err := decodeResponse(body)
	if err != nil {
		return apiResponse{}, responseParsingError(err)
	}

	if envelope.Success {
		return envelope, nil
	}
	return apiResponse{}, classifyFailure(resp.StatusCode, envelope.Message)
}

// classifyFailure maps a non-success envelope onto the error taxonomy using
// the HTTP status the API answered with. The envelope message is preserved
// for the classified statuses only.
func classifyFailure(status int, message string) *Error {
	switch status {
	case http.StatusBadRequest:
		return &Error{Code: status, Kind: KindMissingParameter, Message: message}
	case http.StatusForbidden:
		return &Error{Code: status, Kind: KindInvalidCredentials, Message: message}
	case http.StatusGone:
		return &Error{Code: status, Kind: KindEmptyResponse, Message: message}
	default:
		return &Error{Code: 500, Kind: KindUnknown, Message: "unknown error occurred"}
	}
}

// responseParsingError converts a DecodeError into the client error
// surface, keeping the sub-classification visible in the message.
func responseParsingError(err error) *Error {
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		return &Error{Code: 500, Kind: KindResponseParsing, Message: err.Error()}
	}

	var msg string
	switch decErr.Kind {
	case DecodeSyntax:
		msg = "JSON response syntax error: " + decErr.Detail
	case DecodeTruncated:
		msg = "an empty or incomplete response was received: " + decErr.Detail
	default:
		msg = "JSON response data format does not match the expected one: " + decErr.Detail
	}
	return &Error{Code: 500, Kind: KindResponseParsing, Message: msg}
}

// encodeParams builds the query string, preserving parameter order.
// url.Values is not used because its encoding sorts keys alphabetically.
func encodeParams(params []queryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
