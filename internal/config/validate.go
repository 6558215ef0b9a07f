package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Listen.Addr == "" {
		return errors.New("listen.addr is required")
	}
	if c.Listen.ShutdownTimeout < 0 {
		return errors.New("listen.shutdown_timeout must be >= 0")
	}

	if c.Auth.Header == "" {
		return errors.New("auth.header is required")
	}
	if c.Auth.Token == "" {
		return errors.New("auth.token is required")
	}

	switch c.Websocket.Library {
	case LibraryGorilla, LibraryNhooyr:
	default:
		return fmt.Errorf("websocket.library must be one of %q, %q, got %q",
			LibraryGorilla, LibraryNhooyr, c.Websocket.Library)
	}

	if c.Websocket.Keepalive < 0 {
		return errors.New("websocket.keepalive must be >= 0")
	}
	if c.Websocket.ConnectTimeout < 0 {
		return errors.New("websocket.connect_timeout must be >= 0")
	}

	switch c.Log.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("log.format must be one of text, json, got %q", c.Log.Format)
	}

	return nil
}
