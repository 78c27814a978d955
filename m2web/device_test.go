package m2web

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeResponse_EnvelopeDefaults(t *testing.T) {
	resp, err := decodeResponse([]byte(`{"success":true}`))
	if err != nil {
		t.Fatalf("decodeResponse() error = %v", err)
	}

	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.Session != "" {
		t.Errorf("Session = %q, want empty", resp.Session)
	}
	if resp.Message != "" {
		t.Errorf("Message = %q, want empty", resp.Message)
	}
	if resp.Ewons != nil {
		t.Errorf("Ewons = %v, want nil", resp.Ewons)
	}
	if !reflect.DeepEqual(resp.Ewon, Device{}) {
		t.Errorf("Ewon = %+v, want zero value", resp.Ewon)
	}
	if resp.Code != 0 {
		t.Errorf("Code = %d, want 0", resp.Code)
	}
}

func TestDecodeResponse_Classification(t *testing.T) {
	tests := []struct {
		name string
		body string
		want DecodeKind
	}{
		{
			name: "malformed syntax",
			body: `{"success": maybe}`,
			want: DecodeSyntax,
		},
		{
			name: "empty body",
			body: "",
			want: DecodeTruncated,
		},
		{
			name: "truncated body",
			body: `{"success":`,
			want: DecodeTruncated,
		},
		{
			name: "truncated string value",
			body: `{"message":"cut of`,
			want: DecodeTruncated,
		},
		{
			name: "wrong type for success",
			body: `{"success":"yes"}`,
			want: DecodeShape,
		},
		{
			name: "wrong type for device list",
			body: `{"ewons":{},"success":true}`,
			want: DecodeShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeResponse([]byte(tt.body))
			if err == nil {
				t.Fatal("decodeResponse() succeeded, want error")
			}
			decErr, ok := err.(*DecodeError)
			if !ok {
				t.Fatalf("error type = %T, want *DecodeError", err)
			}
			if decErr.Kind != tt.want {
				t.Errorf("Kind = %v, want %v (detail: %s)", decErr.Kind, tt.want, decErr.Detail)
			}
		})
	}
}

func TestDecodeResponse_MissingDeviceField(t *testing.T) {
	body := `{
	  "ewons": [
	    {
	      "id": 1206698,
	      "name": "bea-test",
	      "encodedName": "bea-test",
	      "customAttributes": ["bea", "", ""],
	      "m2webServer": "eu2.m2web.talk2m.com",
	      "lanDevices": [],
	      "ewonServices": []
	    }
	  ],
	  "success": true
	}`

	_, err := decodeResponse([]byte(body))
	if err == nil {
		t.Fatal("decodeResponse() succeeded, want error")
	}

	decErr, ok := err.(*DecodeError)
	if !ok {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
	if decErr.Kind != DecodeShape {
		t.Errorf("Kind = %v, want DecodeShape", decErr.Kind)
	}
	if !strings.Contains(decErr.Detail, `missing field "status"`) {
		t.Errorf("Detail = %q, want it to name the missing status field", decErr.Detail)
	}
}

func TestDecodeResponse_CustomAttributeCount(t *testing.T) {
	body := `{
	  "ewon": {
	    "id": 42,
	    "name": "ewon42",
	    "encodedName": "ewon42",
	    "status": "online",
	    "description": "",
	    "customAttributes": ["one", "two"],
	    "m2webServer": "eu2.m2web.talk2m.com",
	    "lanDevices": [],
	    "ewonServices": []
	  },
	  "success": true
	}`

	_, err := decodeResponse([]byte(body))
	if err == nil {
		t.Fatal("decodeResponse() succeeded, want error")
	}

	decErr, ok := err.(*DecodeError)
	if !ok {
		t.Fatalf("error type = %T, want *DecodeError", err)
	}
	if decErr.Kind != DecodeShape {
		t.Errorf("Kind = %v, want DecodeShape", decErr.Kind)
	}
	if !strings.Contains(decErr.Detail, "customAttributes") {
		t.Errorf("Detail = %q, want it to name customAttributes", decErr.Detail)
	}
}

func TestDevice_RoundTrip(t *testing.T) {
	original := Device{
		ID:               1206698,
		Name:             "bea-test",
		EncodedName:      "bea-test",
		Status:           "offline",
		Description:      "test bench gateway",
		CustomAttributes: [3]string{"bea", "lab", ""},
		M2WebServer:      "eu2.m2web.talk2m.com",
		LANDevices:       []string{"plc-1"},
		Services:         []string{"vpn"},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Device
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}
