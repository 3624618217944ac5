// Package config loads engine configuration from a .env file and the process
// environment. Priority: environment > .env file > defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Engine struct {
	// RingCapacity is the sequencer ring size; must be a power of two.
	RingCapacity int
	// SnapshotDepth is the number of top price levels per snapshot side.
	SnapshotDepth int
	// TradeHistory is the number of recent trades kept per symbol.
	TradeHistory int
}

type HTTP struct {
	Addr           string
	AllowedOrigins []string
}

type Kafka struct {
	// Brokers empty disables both kafka sinks.
	Brokers       []string
	SnapshotTopic string
	TradeTopic    string
}

type Archive struct {
	// Dir empty disables the pebble market-data archive.
	Dir string
}

type Config struct {
	Engine  Engine
	HTTP    HTTP
	Kafka   Kafka
	Archive Archive
}

func Default() Config {
	return Config{
		Engine: Engine{
			RingCapacity:  1 << 14,
			SnapshotDepth: 10,
			TradeHistory:  50,
		},
		HTTP: HTTP{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Kafka: Kafka{
			SnapshotTopic: "md.snapshots",
			TradeTopic:    "md.trades",
		},
	}
}

// Load reads the optional .env file, applies environment overrides and
// validates the result. A configuration the engine cannot run with (such as
// a non-power-of-two ring) is an error, not a warning.
func Load(envPath string) (Config, error) {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	intVar(&cfg.Engine.RingCapacity, "TALOS_RING_CAPACITY")
	intVar(&cfg.Engine.SnapshotDepth, "TALOS_SNAPSHOT_DEPTH")
	intVar(&cfg.Engine.TradeHistory, "TALOS_TRADE_HISTORY")

	if v := os.Getenv("TALOS_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("TALOS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TALOS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("TALOS_SNAPSHOT_TOPIC"); v != "" {
		cfg.Kafka.SnapshotTopic = v
	}
	if v := os.Getenv("TALOS_TRADE_TOPIC"); v != "" {
		cfg.Kafka.TradeTopic = v
	}
	if v := os.Getenv("TALOS_ARCHIVE_DIR"); v != "" {
		cfg.Archive.Dir = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	e := c.Engine
	if e.RingCapacity <= 0 || e.RingCapacity&(e.RingCapacity-1) != 0 {
		return fmt.Errorf("config: ring capacity %d is not a power of two", e.RingCapacity)
	}
	if e.SnapshotDepth <= 0 {
		return fmt.Errorf("config: snapshot depth %d must be positive", e.SnapshotDepth)
	}
	if e.TradeHistory <= 0 {
		return fmt.Errorf("config: trade history %d must be positive", e.TradeHistory)
	}
	return nil
}

func intVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
