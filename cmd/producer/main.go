package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/streamshape/streamshape/pkg/awsclient"
	"github.com/streamshape/streamshape/pkg/config"
	"github.com/streamshape/streamshape/pkg/producer"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to application config")
	once := flag.Bool("once", false, "write a single burst of sample files and exit")
	flag.Parse()

	cfg := config.Load(*configPath)
	ctx := context.Background()

	awsCfg, err := awsclient.Load(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("[Producer] Failed to load AWS config: %v", err)
	}
	s3Client := awsclient.NewS3(awsCfg, cfg.AWS.Endpoint)

	gen := producer.New(s3Client, cfg.Producer.Bucket, cfg.Producer.Prefix, cfg.Producer.MaxBurst)

	if *once {
		if _, err := gen.RunBurst(ctx); err != nil {
			log.Fatalf("[Producer] Burst failed: %v", err)
		}
		return
	}

	log.Printf("[Producer] Writing sample bursts every %v to s3://%s/%s",
		cfg.Producer.Interval, cfg.Producer.Bucket, cfg.Producer.Prefix)

	ticker := time.NewTicker(cfg.Producer.Interval)
	defer ticker.Stop()

	for range ticker.C {
		if _, err := gen.RunBurst(ctx); err != nil {
			log.Printf("[Producer] Burst failed: %v", err)
		}
	}
}
