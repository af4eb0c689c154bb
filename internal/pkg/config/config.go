package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving durations stored as integers.
type TimeConfig interface {
	// GetMillisecond retrieves the value for key interpreted as milliseconds.
	GetMillisecond(key string) time.Duration
	// GetSecond retrieves the value for key interpreted as seconds.
	GetSecond(key string) time.Duration
	// GetMinute retrieves the value for key interpreted as minutes.
	GetMinute(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
// Missing keys or values that cannot be converted yield the zero value.
type Config interface {
	io.Closer
	TimeConfig

	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64
	GetBool(key string) bool
	GetString(key string) string

	// GetBinary retrieves a base64 encoded value as raw bytes.
	GetBinary(key string) []byte

	// GetArray retrieves a value stored as <element1>,<element2>,...
	// Elements are trimmed and empty ones are dropped.
	GetArray(key string) []string

	// GetMap retrieves a value stored as <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
