package web

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvListenAddr = "CAROUSEL_LISTEN"
	EnvDevMode    = "CAROUSEL_DEV"
	EnvStaticDir  = "CAROUSEL_STATIC_DIR"
)

// ServerConfig contains settings for the preview server.
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	// StaticDir is served at "/", typically the composed output folder.
	StaticDir string
}

// DefaultServerConfigFromEnv reads the server settings from the environment.
// A bare port such as "8080" is accepted as listen address.
func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}
	if _, err := strconv.Atoi(listenAddr); err == nil {
		listenAddr = ":" + listenAddr
	}
	if listenAddr != "" && !strings.Contains(listenAddr, ":") {
		return ServerConfig{}, fmt.Errorf("%s must be host:port or a port (got %q)", EnvListenAddr, listenAddr)
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, StaticDir: os.Getenv(EnvStaticDir)}, nil
}
