package sink

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const objectDateLayout = "2006/01/02"

// Writer persists flushed buffers to object storage: Ok records under the
// sink prefix as one JSON object per line, failed records under the error
// prefix so they can be redriven without touching the good path.
type Writer struct {
	uploader    *manager.Uploader
	bucket      string
	prefix      string
	errorPrefix string
	process     string
}

func NewWriter(client manager.UploadAPIClient, bucket, prefix, errorPrefix, process string) *Writer {
	return &Writer{
		uploader:    manager.NewUploader(client),
		bucket:      bucket,
		prefix:      prefix,
		errorPrefix: errorPrefix,
		process:     process,
	}
}

// WriteBatch uploads one NDJSON object holding every line of a flushed
// buffer. Lines already carry their trailing separator. Returns the key.
func (w *Writer) WriteBatch(ctx context.Context, lines [][]byte) (string, error) {
	if len(lines) == 0 {
		return "", nil
	}

	key := w.objectKey(w.prefix, time.Now().UTC())
	body := bytes.Join(lines, nil)

	res, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", fmt.Errorf("upload batch of %d record(s): %w", len(lines), err)
	}

	log.Printf("[Sink] Uploaded %d record(s) to %s", len(lines), res.Location)
	return key, nil
}

// WriteFailed uploads one failed record's original body under the error
// prefix, keyed by record id for redrive.
func (w *Writer) WriteFailed(ctx context.Context, recordID string, body []byte) error {
	key := path.Join(w.errorPrefix, w.process, recordID)
	_, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("upload failed record %s: %w", recordID, err)
	}
	return nil
}

func (w *Writer) objectKey(prefix string, now time.Time) string {
	name := fmt.Sprintf("%s-%d-%s", w.process, now.Unix(), uuid.NewString()[:8])
	return path.Join(prefix, now.Format(objectDateLayout), name)
}
