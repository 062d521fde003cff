package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"github.com/streamshape/streamshape/pkg/awsclient"
	"github.com/streamshape/streamshape/pkg/codec"
	"github.com/streamshape/streamshape/pkg/config"
	"github.com/streamshape/streamshape/pkg/processor"
	"github.com/streamshape/streamshape/pkg/schema"
	"github.com/streamshape/streamshape/pkg/sink"
)

const (
	localBatchSize    = 100             // records per locally-built batch
	localBatchTimeout = 5 * time.Second // max wait before a partial batch runs
	flushPollInterval = 1 * time.Second
	readErrorBackoff  = 1 * time.Second // pause before retrying a failed read
)

var jsonFast = jsoniter.ConfigFastest

func main() {
	configPath := flag.String("config", "config.yaml", "path to application config")
	eventPath := flag.String("event", "", "transform a single event document from a file and exit")
	local := flag.Bool("local", false, "consume records from Kafka and write to the sink, instead of running as a function")
	flag.Parse()

	cfg := config.Load(*configPath)
	store := schema.NewStore(cfg.SchemaDir)
	proc := processor.New(cfg.Process, store)

	log.Printf("[Transformer] Starting for process %s", cfg.Process)

	switch {
	case *eventPath != "":
		runOnce(proc, *eventPath)
	case *local:
		runLocal(context.Background(), cfg, proc)
	default:
		lambda.Start(proc.Process)
	}
}

// runOnce reads a batch envelope from a file, transforms it and prints the
// response. Useful for exercising a schema without any infrastructure.
func runOnce(proc *processor.Processor, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("[Transformer] Failed to read event file: %v", err)
	}

	var event codec.TransformEvent
	if err := jsonFast.Unmarshal(data, &event); err != nil {
		log.Fatalf("[Transformer] Failed to parse event file: %v", err)
	}

	resp, err := proc.Process(context.Background(), event)
	if err != nil {
		log.Fatalf("[Transformer] Invocation failed: %v", err)
	}

	out, err := jsonFast.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("[Transformer] Failed to marshal response: %v", err)
	}
	fmt.Println(string(out))
}

// runLocal emulates the delivery stream end to end: records come off the
// Kafka delivery topic, run through the processor in batches, and Ok results
// land in the sink buffer, which a background routine flushes to S3 by the
// configured size/time thresholds.
func runLocal(ctx context.Context, cfg config.AppConfig, proc *processor.Processor) {
	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("[Transformer] Failed to load AWS config: %v", err)
	}
	s3Client := awsclient.NewS3(awsCfg, cfg.AWS.Endpoint)

	writer := sink.NewWriter(s3Client, cfg.Sink.Bucket, cfg.Sink.Prefix, cfg.Sink.ErrorPrefix, cfg.Process)
	buffer := sink.NewBuffer(cfg.Process)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Delivery.Kafka.Brokers,
		Topic:   cfg.Delivery.Kafka.Topic,
		GroupID: cfg.Process + "-transformer",
	})
	defer reader.Close()

	startFlusher(ctx, cfg, buffer, writer)

	var batch []codec.Record
	lastRun := time.Now()
	for {
		readCtx, cancel := context.WithTimeout(ctx, localBatchTimeout)
		msg, readErr := reader.ReadMessage(readCtx)
		cancel()
		if readErr == nil {
			batch = append(batch, codec.Record{
				RecordID:                    uuid.NewString(),
				ApproximateArrivalTimestamp: msg.Time.UnixMilli(),
				Data:                        codec.EncodeData(msg.Value),
			})
		} else if ctx.Err() != nil {
			return
		} else if !isIdleRead(readErr) {
			log.Printf("[Transformer] Kafka read error on topic %s: %v", cfg.Delivery.Kafka.Topic, readErr)
			time.Sleep(readErrorBackoff)
		}

		if len(batch) >= localBatchSize || (len(batch) > 0 && time.Since(lastRun) >= localBatchTimeout) {
			processBatch(ctx, cfg, proc, buffer, writer, batch)
			batch = batch[:0]
			lastRun = time.Now()
		}
	}
}

// isIdleRead reports whether a read error only means the poll window elapsed
// with no message. Anything else is a broker problem worth logging and
// backing off from, so a dead broker doesn't turn the loop into a busy spin.
func isIdleRead(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// processBatch runs one locally-built batch and routes the results: Ok
// bodies into the sink buffer, failed bodies to the error location.
func processBatch(ctx context.Context, cfg config.AppConfig, proc *processor.Processor,
	buffer *sink.Buffer, writer *sink.Writer, records []codec.Record) {
	event := codec.TransformEvent{
		InvocationID: uuid.NewString(),
		Region:       cfg.AWS.Region,
		Records:      records,
	}

	resp, err := proc.Process(ctx, event)
	if err != nil {
		// Schema-level failure: nothing per-record is meaningful.
		log.Printf("[Transformer] Batch %s aborted: %v", event.InvocationID, err)
		return
	}

	for _, rec := range resp.Records {
		body, decodeErr := codec.DecodeData(rec.Data)
		if decodeErr != nil {
			log.Printf("[Transformer] Record %s: undecodable result body: %v", rec.RecordID, decodeErr)
			continue
		}
		switch rec.Result {
		case codec.ResultOk:
			buffer.Add(body)
		case codec.ResultProcessingFailed:
			if writeErr := writer.WriteFailed(ctx, rec.RecordID, body); writeErr != nil {
				log.Printf("[Transformer] Record %s: %v", rec.RecordID, writeErr)
			}
		case codec.ResultDropped:
			// Intentionally excluded from the sink.
		}
	}
}

// startFlusher drains the sink buffer on the configured thresholds.
func startFlusher(ctx context.Context, cfg config.AppConfig, buffer *sink.Buffer, writer *sink.Writer) {
	go func() {
		ticker := time.NewTicker(flushPollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !buffer.ShouldFlush(cfg.Sink.BufferBytes, cfg.Sink.BufferAge) {
					continue
				}
				lines := buffer.Flush()
				if _, err := writer.WriteBatch(ctx, lines); err != nil {
					log.Printf("[Sink] Flush failed: %v", err)
				}
				buffer.Metrics()
			}
		}
	}()
}
