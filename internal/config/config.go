package config

import "time"

// Config is the ambient configuration for a demo chargepoint/centralsystem
// binary: transport endpoint, session timeouts, logging, and the optional
// message-log collaborator. Handler/business logic configuration is the
// application's concern, not the engine's.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Session    SessionConfig    `mapstructure:"session"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	MessageLog MessageLogConfig `mapstructure:"message_log"`
}

// ServerConfig holds the listening/dialing address for the demo binaries.
type ServerConfig struct {
	Host string    `mapstructure:"host"`
	Port int       `mapstructure:"port"`
	TLS  TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds optional transport TLS settings.
type TLSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CACert     string `mapstructure:"ca_cert"`
	ClientCert string `mapstructure:"client_cert"`
	ClientKey  string `mapstructure:"client_key"`
	SkipVerify bool   `mapstructure:"skip_verify"`
}

// SessionConfig holds engine-level session tuning, independent of any
// particular handler's business logic.
type SessionConfig struct {
	ResponseTimeout   time.Duration `mapstructure:"response_timeout"`
	HandshakeTimeout  time.Duration `mapstructure:"handshake_timeout"`
	ProtocolVersion   string        `mapstructure:"protocol_version"`
	RaiseOnCallError  bool          `mapstructure:"raise_on_call_error"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or text
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

// MessageLogConfig controls the optional MongoDB message-log collaborator
// (internal/messagelog). It is never required by the engine itself; a zero
// value simply means no message is ever persisted.
type MessageLogConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URI               string        `mapstructure:"uri"`
	Database          string        `mapstructure:"database"`
	Collection        string        `mapstructure:"collection"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
}

// Defaults returns a Config with the same baseline values Load falls back
// to when no key is set in the file or environment.
func Defaults() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 9000},
		Session: SessionConfig{
			ResponseTimeout:  30 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			ProtocolVersion:  "1.6",
		},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stdout"},
		MessageLog: MessageLogConfig{
			Collection:        "ocpp_messages",
			ConnectionTimeout: 10 * time.Second,
		},
	}
}
