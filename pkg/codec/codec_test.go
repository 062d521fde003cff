package codec

import (
	"bytes"
	"encoding/base64"
	"reflect"
	"testing"
)

func TestDataRoundTrip(t *testing.T) {
	raw := []byte(`{"a":"1"}`)

	decoded, err := DecodeData(EncodeData(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded, raw) {
		t.Errorf("Round trip changed bytes: %q", decoded)
	}
}

func TestDecodeDataRejectsInvalidBase64(t *testing.T) {
	if _, err := DecodeData("not base64!!"); err == nil {
		t.Errorf("Expected an error for invalid transport encoding")
	}
}

func TestDecodePayload(t *testing.T) {
	payload, err := DecodePayload([]byte(`{"a":"1","n":{"b":2}}`))
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	expected := map[string]any{"a": "1", "n": map[string]any{"b": float64(2)}}
	if !reflect.DeepEqual(payload, expected) {
		t.Errorf("Expected %v, got %v", expected, payload)
	}
}

func TestDecodePayloadRejectsNonObjects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array", `[1,2]`},
		{"scalar", `42`},
		{"null", `null`},
		{"garbage", `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload([]byte(tt.body)); err == nil {
				t.Errorf("Expected an error for body %q", tt.body)
			}
		})
	}
}

func TestEncodePayloadLine(t *testing.T) {
	line, err := EncodePayloadLine(map[string]any{"a": int64(1)})
	if err != nil {
		t.Fatalf("EncodePayloadLine failed: %v", err)
	}

	if line[len(line)-1] != '\n' {
		t.Fatalf("Line must end with a record separator: %q", line)
	}
	if bytes.Count(line, []byte("\n")) != 1 {
		t.Errorf("Line must contain exactly one record separator: %q", line)
	}

	payload, err := DecodePayload(bytes.TrimSuffix(line, []byte("\n")))
	if err != nil {
		t.Fatalf("Line body is not a valid JSON object: %v", err)
	}
	if payload["a"] != float64(1) {
		t.Errorf("Unexpected payload: %v", payload)
	}
}

func TestEncodePayloadLineKeepsFloatPrecision(t *testing.T) {
	payload := map[string]any{
		"random_float":  0.123456789,
		"effectiveTime": float64(1684290254000),
	}

	line, err := EncodePayloadLine(payload)
	if err != nil {
		t.Fatalf("EncodePayloadLine failed: %v", err)
	}
	if !bytes.Contains(line, []byte("0.123456789")) {
		t.Errorf("Float value was rounded on encode: %q", line)
	}

	back, err := DecodePayload(bytes.TrimSuffix(line, []byte("\n")))
	if err != nil {
		t.Fatalf("Line body is not a valid JSON object: %v", err)
	}
	if !reflect.DeepEqual(back, payload) {
		t.Errorf("Pass-through values must round-trip unchanged: %v", back)
	}
}

func TestEnvelopeFieldNames(t *testing.T) {
	event := TransformEvent{
		InvocationID:      "inv-1",
		DeliveryStreamARN: "arn:aws:firehose:us-east-1:0:deliverystream/ds",
		Region:            "us-east-1",
		Records: []Record{
			{RecordID: "r1", Data: base64.StdEncoding.EncodeToString([]byte(`{}`))},
		},
	}

	data, err := jsonFast.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, field := range []string{`"invocationId"`, `"deliveryStreamArn"`, `"region"`, `"records"`, `"recordId"`, `"data"`} {
		if !bytes.Contains(data, []byte(field)) {
			t.Errorf("Envelope is missing field %s: %s", field, data)
		}
	}

	var back TransformEvent
	if err := jsonFast.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(back, event) {
		t.Errorf("Round trip changed the envelope: %+v", back)
	}
}
