package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	jsoniter "github.com/json-iterator/go"

	"github.com/streamshape/streamshape/pkg/awsclient"
	"github.com/streamshape/streamshape/pkg/config"
	"github.com/streamshape/streamshape/pkg/dispatch"
)

var jsonFast = jsoniter.ConfigFastest

func main() {
	configPath := flag.String("config", "config.yaml", "path to application config")
	eventPath := flag.String("event", "", "handle a single object-created event from a file and exit")
	flag.Parse()

	cfg := config.Load(*configPath)
	ctx := context.Background()

	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("[Dispatch] Failed to load AWS config: %v", err)
	}
	s3Client := awsclient.NewS3(awsCfg, cfg.AWS.Endpoint)

	forwarder := newForwarder(cfg, awsCfg)
	defer forwarder.Close()

	d := dispatch.New(s3Client, cfg.Producer.Bucket, cfg.Producer.Prefix, forwarder)

	if *eventPath != "" {
		runOnce(ctx, d, *eventPath)
		return
	}

	lambda.Start(d.Handle)
}

// newForwarder selects the delivery backend from config, reusing the AWS
// config already loaded for the S3 client.
func newForwarder(cfg config.AppConfig, awsCfg aws.Config) dispatch.Forwarder {
	switch cfg.Delivery.Mode {
	case "kafka":
		return dispatch.NewKafkaForwarder(cfg.Delivery.Kafka.Brokers, cfg.Delivery.Kafka.Topic)
	case "firehose":
		client := awsclient.NewFirehose(awsCfg, cfg.AWS.Endpoint)
		return dispatch.NewFirehoseForwarder(client, cfg.Delivery.Firehose.StreamName)
	default:
		log.Fatalf("[Dispatch] Unknown delivery mode %q", cfg.Delivery.Mode)
		return nil
	}
}

func runOnce(ctx context.Context, d *dispatch.Dispatcher, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("[Dispatch] Failed to read event file: %v", err)
	}

	var event dispatch.ObjectCreatedEvent
	if err := jsonFast.Unmarshal(data, &event); err != nil {
		log.Fatalf("[Dispatch] Failed to parse event file: %v", err)
	}

	if err := d.Handle(ctx, event); err != nil {
		log.Fatalf("[Dispatch] Event failed: %v", err)
	}
}
