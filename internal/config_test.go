package internal

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Addr_Joins_Host_And_Port(t *testing.T) {
	config := Config{Host: "127.0.0.1", Port: 9090}
	require.Equal(t, "127.0.0.1:9090", config.Addr())
}

func Test_SlogLevel_Parses_With_Info_Fallback(t *testing.T) {
	req := require.New(t)

	req.Equal(slog.LevelDebug, Config{LogLevel: "DEBUG"}.SlogLevel())
	req.Equal(slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	req.Equal(slog.LevelError, Config{LogLevel: "ERROR"}.SlogLevel())
	req.Equal(slog.LevelInfo, Config{LogLevel: "verbose"}.SlogLevel())
	req.Equal(slog.LevelInfo, Config{}.SlogLevel())
}
