package m2web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Device is one eWON gateway registered on the corporate account.
//
// Devices are only ever produced by decoding API responses; the client never
// sends them back to the API. Once a device object is present in a response,
// every field listed here must be present on the wire. A missing field is a
// decode failure, not a default.
type Device struct {
	// ID is the unique numeric identifier assigned by the API.
	ID uint32 `json:"id"`

	// Name is the unique device name.
	Name string `json:"name"`

	// EncodedName is the URL-safe form of Name.
	EncodedName string `json:"encodedName"`

	// Status reports the connection state, typically "online" or "offline".
	Status string `json:"status"`

	// Description is the free-form user description.
	Description string `json:"description"`

	// CustomAttributes holds the three user-defined attribute slots.
	CustomAttributes [3]string `json:"customAttributes"`

	// M2WebServer is the VPN server the device is attached to.
	M2WebServer string `json:"m2webServer"`

	// LANDevices lists the LAN devices attached behind the gateway.
	LANDevices []string `json:"lanDevices"`

	// Services lists the active services exposed by the device.
	Services []string `json:"ewonServices"`
}

// deviceFields are the wire fields a device object must carry.
var deviceFields = []string{
	"id",
	"name",
	"encodedName",
	"status",
	"description",
	"customAttributes",
	"m2webServer",
	"lanDevices",
	"ewonServices",
}

// UnmarshalJSON decodes a device object, rejecting objects with absent
// required fields. Field presence is checked before value decoding so the
// resulting error names the first missing field.
func (d *Device) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, field := range deviceFields {
		if _, ok := raw[field]; !ok {
			return &missingFieldError{field: field}
		}
	}

	// Alias drops the custom unmarshaler to avoid recursion.
	type alias Device
	var dev alias
	if err := json.Unmarshal(data, &dev); err != nil {
		return err
	}

	// A fixed-size Go array silently pads or truncates, so the slot count
	// has to be checked against the wire value.
	var attrs []string
	if err := json.Unmarshal(raw["customAttributes"], &attrs); err != nil {
		return err
	}
	if len(attrs) != len(dev.CustomAttributes) {
		return &missingFieldError{
			field:  "customAttributes",
			detail: fmt.Sprintf("expected %d elements, got %d", len(dev.CustomAttributes), len(attrs)),
		}
	}

	*d = Device(dev)
	return nil
}

// missingFieldError marks a device object whose required field is absent or
// has the wrong shape.
type missingFieldError struct {
	field  string
	detail string
}

func (e *missingFieldError) Error() string {
	if e.detail != "" {
		return fmt.Sprintf("field %q in device object: %s", e.field, e.detail)
	}
	return fmt.Sprintf("missing field %q in device object", e.field)
}

// apiResponse is the envelope every M2Web endpoint answers with.
//
// All fields are optional on the wire and default to their zero value when
// absent. A present field with the wrong type is a decode failure.
type apiResponse struct {
	Success bool     `json:"success"`
	Ewon    Device   `json:"ewon"`
	Ewons   []Device `json:"ewons"`
	Session string   `json:"t2msession"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
}

// DecodeKind classifies why a response body failed to decode.
type DecodeKind int

const (
	// DecodeSyntax marks a body that is not well-formed JSON.
	DecodeSyntax DecodeKind = iota

	// DecodeShape marks well-formed JSON whose structure does not match the
	// envelope: a wrong field type or a missing required device field.
	DecodeShape

	// DecodeTruncated marks an empty or incomplete body.
	DecodeTruncated
)

// DecodeError describes a response body that could not be turned into the
// API envelope. The kind is preserved so the client can report syntax
// errors, shape mismatches and truncated bodies distinctly.
type DecodeError struct {
	Kind   DecodeKind
	Detail string
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case DecodeSyntax:
		return "malformed JSON: " + e.Detail
	case DecodeTruncated:
		return "truncated JSON: " + e.Detail
	default:
		return "unexpected JSON shape: " + e.Detail
	}
}

// decodeResponse turns a raw response body into the API envelope.
func decodeResponse(data []byte) (apiResponse, error) {
	var resp apiResponse
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&resp); err != nil {
		return apiResponse{}, classifyDecodeError(err)
	}
	return resp, nil
}

// classifyDecodeError maps encoding/json failures onto DecodeError kinds.
func classifyDecodeError(err error) *DecodeError {
	var (
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		missingErr *missingFieldError
	)
	switch {
	case errors.Is(err, io.EOF):
		return &DecodeError{Kind: DecodeTruncated, Detail: "empty response body"}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &DecodeError{Kind: DecodeTruncated, Detail: "unexpected end of JSON input"}
	case errors.As(err, &missingErr):
		return &DecodeError{Kind: DecodeShape, Detail: missingErr.Error()}
	case errors.As(err, &typeErr):
		return &DecodeError{Kind: DecodeShape, Detail: err.Error()}
	case errors.As(err, &syntaxErr):
		return &DecodeError{Kind: DecodeSyntax, Detail: err.Error()}
	default:
		return &DecodeError{Kind: DecodeShape, Detail: err.Error()}
	}
}
