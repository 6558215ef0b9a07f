package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAddr            = ":4000"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultAuthHeader      = "Authorization"
	DefaultAuthToken       = "Bearer random-secret"
	DefaultLibrary         = LibraryGorilla
	DefaultKeepalive       = 12 * time.Second
	DefaultConnectTimeout  = 3 * time.Second
	DefaultLogLevel        = LogLevelInfo
	DefaultLogFormat       = LogFormatText
)

// Websocket libraries.
const (
	LibraryGorilla = "gorilla"
	LibraryNhooyr  = "nhooyr"
)

// Log levels and formats.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

func (c *Config) applyDefaults() {
	if c.Listen.Addr == "" {
		c.Listen.Addr = DefaultAddr
	}
	if c.Listen.ShutdownTimeout == 0 {
		c.Listen.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.Auth.Header == "" {
		c.Auth.Header = DefaultAuthHeader
	}
	if c.Auth.Token == "" {
		c.Auth.Token = DefaultAuthToken
	}

	if c.Websocket.Library == "" {
		c.Websocket.Library = DefaultLibrary
	}
	if c.Websocket.Keepalive == 0 {
		c.Websocket.Keepalive = DefaultKeepalive
	}
	if c.Websocket.ConnectTimeout == 0 {
		c.Websocket.ConnectTimeout = DefaultConnectTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
