// Package dispatch reacts to object-created notifications: it reads the new
// object's full byte content and forwards it as one record into the delivery
// channel that batches records toward the transformer.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectCreatedEvent is the EventBridge notification shape for S3 object
// creation. Only the fields the dispatcher checks are mapped.
type ObjectCreatedEvent struct {
	Source     string `json:"source"`
	DetailType string `json:"detail-type"`
	Detail     struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key string `json:"key"`
		} `json:"object"`
	} `json:"detail"`
}

// Forwarder delivers one record's bytes into the streaming channel.
type Forwarder interface {
	Forward(ctx context.Context, data []byte) error
	Close() error
}

// S3API is the slice of the S3 client the dispatcher needs.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Dispatcher struct {
	s3        S3API
	bucket    string
	prefix    string
	forwarder Forwarder
}

func New(s3Client S3API, bucket, prefix string, forwarder Forwarder) *Dispatcher {
	return &Dispatcher{
		s3:        s3Client,
		bucket:    bucket,
		prefix:    prefix,
		forwarder: forwarder,
	}
}

// Handle validates the notification against the configured bucket and
// producer prefix, reads the object and forwards its bytes as one record.
func (d *Dispatcher) Handle(ctx context.Context, event ObjectCreatedEvent) error {
	if event.Source != "aws.s3" {
		return fmt.Errorf("unexpected event source %q", event.Source)
	}
	if event.DetailType != "Object Created" {
		return fmt.Errorf("unexpected detail type %q", event.DetailType)
	}
	if event.Detail.Bucket.Name != d.bucket {
		return fmt.Errorf("unexpected bucket %q", event.Detail.Bucket.Name)
	}
	key := event.Detail.Object.Key
	if !strings.HasPrefix(key, d.prefix) {
		return fmt.Errorf("object key %q is outside producer prefix %q", key, d.prefix)
	}

	obj, err := d.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}

	if err := d.forwarder.Forward(ctx, data); err != nil {
		return fmt.Errorf("forward object %s: %w", key, err)
	}

	log.Printf("[Dispatch] Forwarded s3://%s/%s (%d bytes)", d.bucket, key, len(data))
	return nil
}
