package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
process: billing
schemaDir: /etc/streamshape/schemas

aws:
  region: us-east-1
  endpoint: http://localhost:4566
  accessKey: test
  secretKey: test

producer:
  bucket: data-bucket
  prefix: producer/
  interval: 30s
  maxBurst: 10

delivery:
  mode: kafka
  kafka:
    brokers:
      - localhost:9092
    topic: raw-records

sink:
  bucket: data-bucket
  prefix: firehose/
  errorPrefix: firehose-errors/
  bufferBytes: 2048
  bufferAge: 10s
`)

	cfg := Load(path)

	if cfg.Process != "billing" {
		t.Errorf("Expected process 'billing', got %q", cfg.Process)
	}
	if cfg.SchemaDir != "/etc/streamshape/schemas" {
		t.Errorf("Unexpected schemaDir %q", cfg.SchemaDir)
	}
	if cfg.AWS.Region != "us-east-1" || cfg.AWS.Endpoint != "http://localhost:4566" {
		t.Errorf("Unexpected AWS config: %+v", cfg.AWS)
	}
	if cfg.Producer.Interval != 30*time.Second || cfg.Producer.MaxBurst != 10 {
		t.Errorf("Unexpected producer config: %+v", cfg.Producer)
	}
	if cfg.Delivery.Mode != "kafka" || cfg.Delivery.Kafka.Topic != "raw-records" {
		t.Errorf("Unexpected delivery config: %+v", cfg.Delivery)
	}
	if cfg.Sink.BufferBytes != 2048 || cfg.Sink.BufferAge != 10*time.Second {
		t.Errorf("Unexpected sink config: %+v", cfg.Sink)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "process: billing\n")

	cfg := Load(path)

	if cfg.SchemaDir != "schemas" {
		t.Errorf("Expected default schemaDir, got %q", cfg.SchemaDir)
	}
	if cfg.Producer.Interval != time.Minute || cfg.Producer.MaxBurst != 60 {
		t.Errorf("Unexpected producer defaults: %+v", cfg.Producer)
	}
	if cfg.Delivery.Mode != "firehose" {
		t.Errorf("Expected default delivery mode 'firehose', got %q", cfg.Delivery.Mode)
	}
	if cfg.Sink.BufferBytes != 1<<20 || cfg.Sink.BufferAge != 60*time.Second {
		t.Errorf("Unexpected sink defaults: %+v", cfg.Sink)
	}
}
