// Package processor drives one batch invocation: decode each record, run
// the transformation pipeline, re-encode, and assemble the ordered response.
package processor

import (
	"context"
	"log"

	"github.com/streamshape/streamshape/pkg/codec"
	"github.com/streamshape/streamshape/pkg/schema"
	"github.com/streamshape/streamshape/pkg/transform"
)

// Processor transforms batches for a single process. Records in a batch are
// handled strictly sequentially and independently; the only shared state is
// the immutable schema, so concurrent invocations are safe.
type Processor struct {
	process string
	store   *schema.Store
}

func New(process string, store *schema.Store) *Processor {
	return &Processor{process: process, store: store}
}

// Process transforms every record of the batch and returns one result per
// input record, in input order, matched by recordId. Per-record failures
// become ProcessingFailed results with the original body echoed back; only
// a schema that cannot be loaded at all fails the whole invocation.
func (p *Processor) Process(_ context.Context, event codec.TransformEvent) (codec.TransformResponse, error) {
	sch, err := p.store.Load(p.process)
	if err != nil {
		return codec.TransformResponse{}, err
	}
	pipeline := transform.New(sch)

	results := make([]codec.TransformedRecord, 0, len(event.Records))
	failed := 0
	for _, record := range event.Records {
		out := p.transformRecord(pipeline, record)
		if out.Result == codec.ResultProcessingFailed {
			failed++
		}
		results = append(results, out)
	}

	if failed > 0 {
		log.Printf("[Processor] Batch %s: %d/%d record(s) failed for process %s",
			event.InvocationID, failed, len(event.Records), p.process)
	}
	return codec.TransformResponse{Records: results}, nil
}

// transformRecord runs one record through the pipeline. Every failure is
// absorbed here so that one malformed record never blocks the rest of the
// batch. Logs carry the column and stage, never the payload value.
func (p *Processor) transformRecord(pipeline *transform.Pipeline, record codec.Record) codec.TransformedRecord {
	fail := func(err error) codec.TransformedRecord {
		log.Printf("[Processor] Record %s failed for process %s: %v", record.RecordID, p.process, err)
		return codec.TransformedRecord{
			RecordID: record.RecordID,
			Result:   codec.ResultProcessingFailed,
			Data:     record.Data, // original body, redirected to the error destination downstream
		}
	}

	raw, err := codec.DecodeData(record.Data)
	if err != nil {
		return fail(err)
	}
	payload, err := codec.DecodePayload(raw)
	if err != nil {
		return fail(err)
	}
	if err := pipeline.Run(payload); err != nil {
		return fail(err)
	}
	line, err := codec.EncodePayloadLine(payload)
	if err != nil {
		return fail(err)
	}

	return codec.TransformedRecord{
		RecordID: record.RecordID,
		Result:   codec.ResultOk,
		Data:     codec.EncodeData(line),
	}
}
