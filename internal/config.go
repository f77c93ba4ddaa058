package internal

import (
	"fmt"
	"log/slog"
	"time"
)

type Config struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlobDir        string `env:"BLOB_DIR,default=./blobs"`
	BlobBaseURL    string `env:"BLOB_BASE_URL,default=/blobs"`

	AuthSecret        string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	QueueSize       int           `env:"QUEUE_SIZE,default=256"`
	EventBufferSize int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	SinkTimeout     time.Duration `env:"SINK_TIMEOUT,default=2s"`

	PresenceTimeout time.Duration `env:"PRESENCE_TIMEOUT,default=30s"`
	SweepInterval   time.Duration `env:"SWEEP_INTERVAL,default=10s"`
	GCInterval      time.Duration `env:"GC_INTERVAL,default=5m"`

	LogLevel string `env:"LOG_LEVEL,default=INFO"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel maps the configured level string, defaulting to Info on
// anything unrecognized.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
