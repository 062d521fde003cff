package dispatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/firehose"
	"github.com/aws/aws-sdk-go-v2/service/firehose/types"
)

// FirehoseAPI is the slice of the Firehose client the forwarder needs.
type FirehoseAPI interface {
	PutRecord(ctx context.Context, in *firehose.PutRecordInput, opts ...func(*firehose.Options)) (*firehose.PutRecordOutput, error)
}

// FirehoseForwarder puts each record onto a delivery stream. Buffering,
// batching cadence and error redirection are properties of the stream, not
// of this forwarder.
type FirehoseForwarder struct {
	client FirehoseAPI
	stream string
}

func NewFirehoseForwarder(client FirehoseAPI, stream string) *FirehoseForwarder {
	return &FirehoseForwarder{client: client, stream: stream}
}

func (f *FirehoseForwarder) Forward(ctx context.Context, data []byte) error {
	_, err := f.client.PutRecord(ctx, &firehose.PutRecordInput{
		DeliveryStreamName: aws.String(f.stream),
		Record:             &types.Record{Data: data},
	})
	if err != nil {
		return fmt.Errorf("firehose put record to %s: %w", f.stream, err)
	}
	return nil
}

func (f *FirehoseForwarder) Close() error { return nil }
