// Package codec handles the wire representation of the transformation
// contract: the batch envelope exchanged with the delivery stream and the
// base64 transport encoding of each record body.
package codec

import (
	"encoding/base64"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var (
	// jsonFast is our high-performance JSON API, for envelope work.
	jsonFast = jsoniter.ConfigFastest
	// jsonStd re-encodes payload bodies. ConfigFastest rounds floats to six
	// digits, which would silently alter pass-through values; record bodies
	// must round-trip at full precision.
	jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Result is the per-record status reported back to the delivery stream.
type Result string

const (
	// ResultOk marks a record whose body was replaced by the transformed payload.
	ResultOk Result = "Ok"
	// ResultDropped marks a record intentionally excluded from the sink.
	// No stage emits it today; it stays in the contract because the delivery
	// stream accepts it and a future filtering stage would need it.
	ResultDropped Result = "Dropped"
	// ResultProcessingFailed marks a record the delivery stream should
	// redirect to its error destination. The original body is echoed back.
	ResultProcessingFailed Result = "ProcessingFailed"
)

// Record is one transport-encoded record of an incoming batch.
type Record struct {
	RecordID                    string `json:"recordId"`
	ApproximateArrivalTimestamp int64  `json:"approximateArrivalTimestamp,omitempty"`
	Data                        string `json:"data"`
}

// TransformEvent is the batch envelope delivered to the transformer.
// Invocation metadata is carried but not interpreted here.
type TransformEvent struct {
	InvocationID      string   `json:"invocationId"`
	DeliveryStreamARN string   `json:"deliveryStreamArn"`
	Region            string   `json:"region"`
	Records           []Record `json:"records"`
}

// TransformedRecord is one entry of the response batch.
type TransformedRecord struct {
	RecordID string `json:"recordId"`
	Result   Result `json:"result"`
	Data     string `json:"data"`
}

// TransformResponse mirrors the request: one entry per input record,
// in the same order.
type TransformResponse struct {
	Records []TransformedRecord `json:"records"`
}

// DecodeData decodes the base64 transport encoding of a record body.
func DecodeData(data string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode record data: %w", err)
	}
	return raw, nil
}

// EncodeData encodes raw bytes into the base64 transport encoding.
func EncodeData(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodePayload parses a record body into a key-value payload.
// Each record is small and parsed whole.
func DecodePayload(raw []byte) (map[string]any, error) {
	var payload map[string]any
	if err := jsonFast.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode payload: body is not a JSON object")
	}
	return payload, nil
}

// EncodePayloadLine serializes a payload as a single JSON object followed by
// exactly one record separator, the shape the sink stores: one object per line.
func EncodePayloadLine(payload map[string]any) ([]byte, error) {
	line, err := jsonStd.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return append(line, '\n'), nil
}
