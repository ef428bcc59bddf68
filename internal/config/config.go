package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// ServerConfig holds the process-level settings for the room server.
type ServerConfig struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr"`
	// StaticDir is served at the web root for the browser client.
	StaticDir string `json:"static_dir"`
	// ChatHistoryLimit bounds how many chat messages a room retains.
	ChatHistoryLimit int `json:"chat_history_limit"`
}

var (
	cfg      *ServerConfig
	loadOnce sync.Once
	loadErr  error
)

func defaults() *ServerConfig {
	return &ServerConfig{
		Addr:             ":8080",
		StaticDir:        "public",
		ChatHistoryLimit: 50,
	}
}

// LoadServerConfig loads the server configuration from the given path.
// Missing fields keep their defaults. The first call wins.
func LoadServerConfig(path string) error {
	loadOnce.Do(func() {
		c := defaults()
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read server config: %w", err)
			return
		}
		if err := json.Unmarshal(data, c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal server config: %w", err)
			return
		}
		cfg = c
	})
	return loadErr
}

// GetServerConfig returns the loaded configuration, or the defaults when
// no file has been loaded.
func GetServerConfig() *ServerConfig {
	if cfg == nil {
		return defaults()
	}
	return cfg
}
