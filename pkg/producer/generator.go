// Package producer writes sample JSON files into object storage. Each file
// holds a single newline-free JSON object keyed under the producer prefix
// with a timestamp-derived name; the dispatcher picks them up from
// object-created notifications. Smoke-test traffic, not part of the
// transformation contract.
package producer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math/rand" // Using weak random for test data generation only
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
)

const (
	timestampLayout   = "2006-01-02T15_04_05" // underscores keep keys shell-friendly
	wordLength        = 5
	maxConcurrentPuts = 4
)

// jsonStd keeps the sample float at full precision; the fastest config would
// round it to six digits before it ever enters the pipeline.
var jsonStd = jsoniter.ConfigCompatibleWithStandardLibrary

// S3API is the slice of the S3 client the generator needs.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SamplePayload is the generated file content: a short random text token and
// a random fractional number.
type SamplePayload struct {
	RandomWord  string  `json:"random_word"`
	RandomFloat float64 `json:"random_float"`
}

type Generator struct {
	client   S3API
	bucket   string
	prefix   string
	maxBurst int
}

func New(client S3API, bucket, prefix string, maxBurst int) *Generator {
	return &Generator{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		maxBurst: maxBurst,
	}
}

// RunBurst writes a random number of sample files, up to maxBurst, bounded
// by a small worker pool. Returns how many files were written.
func (g *Generator) RunBurst(ctx context.Context) (int, error) {
	if g.maxBurst <= 0 {
		return 0, nil
	}
	n := rand.Intn(g.maxBurst) //nolint:gosec // weak random is fine for sample data

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentPuts)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			return g.putSample(ctx, time.Now().UTC())
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	log.Printf("[Producer] Wrote %d sample file(s) to s3://%s/%s", n, g.bucket, g.prefix)
	return n, nil
}

// putSample writes one sample object. The key carries the timestamp plus a
// short unique suffix so concurrent writes within one second never collide.
func (g *Generator) putSample(ctx context.Context, now time.Time) error {
	payload := SamplePayload{
		RandomWord:  randomWord(),
		RandomFloat: rand.Float64(), //nolint:gosec // weak random is fine for sample data
	}
	body, err := jsonStd.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sample payload: %w", err)
	}

	key := g.ObjectKey(now)
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put sample object %s: %w", key, err)
	}
	return nil
}

// ObjectKey builds the timestamp-derived key for one sample file.
func (g *Generator) ObjectKey(now time.Time) string {
	name := fmt.Sprintf("%s-%s.json", now.Format(timestampLayout), uuid.NewString()[:8])
	return path.Join(g.prefix, name)
}

// randomWord picks wordLength distinct lowercase letters.
func randomWord() string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz"
	word := make([]byte, 0, wordLength)
	for _, i := range rand.Perm(len(alphabet))[:wordLength] { //nolint:gosec // weak random is fine for sample data
		word = append(word, alphabet[i])
	}
	return string(word)
}
