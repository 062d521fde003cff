package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Named types to allow reuse and clearer code
type AWSConfig struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

type ProducerConfig struct {
	Bucket   string        `yaml:"bucket"`
	Prefix   string        `yaml:"prefix"`
	Interval time.Duration `yaml:"interval"`
	MaxBurst int           `yaml:"maxBurst"`
}

type DeliveryConfig struct {
	Mode string `yaml:"mode"` // "firehose" or "kafka"

	Firehose struct {
		StreamName string `yaml:"streamName"`
	} `yaml:"firehose"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

type SinkConfig struct {
	Bucket      string        `yaml:"bucket"`
	Prefix      string        `yaml:"prefix"`
	ErrorPrefix string        `yaml:"errorPrefix"`
	BufferBytes int           `yaml:"bufferBytes"`
	BufferAge   time.Duration `yaml:"bufferAge"`
}

type AppConfig struct {
	// Process selects which schema document applies to this deployment.
	// Fixed for the lifetime of the process, never derived from record contents.
	Process   string `yaml:"process"`
	SchemaDir string `yaml:"schemaDir"`

	AWS      AWSConfig      `yaml:"aws"`
	Producer ProducerConfig `yaml:"producer"`
	Delivery DeliveryConfig `yaml:"delivery"`
	Sink     SinkConfig     `yaml:"sink"`
}

// Load reads and parses a YAML config file into an AppConfig struct.
// It will terminate the program if the file is not found or invalid.
func Load(path string) AppConfig {
	// Initialize with defaults
	cfg := AppConfig{
		SchemaDir: "schemas",
		Producer: ProducerConfig{
			Interval: 1 * time.Minute,
			MaxBurst: 60,
		},
		Delivery: DeliveryConfig{
			Mode: "firehose",
		},
		Sink: SinkConfig{
			BufferBytes: 1 << 20, // mirrors the delivery stream's 1 MiB buffering hint
			BufferAge:   60 * time.Second,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("Config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Error parsing config file: %v", err)
	}

	if cfg.Process == "" {
		log.Fatalf("Config is missing required field: process")
	}

	return cfg
}
