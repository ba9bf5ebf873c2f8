package api

import (
	"errors"
	"net"
	"time"
)

// Config holds the configuration for the printer client.
type Config struct {
	// Address is the host:port of the printer's raw TCP port.
	// Default: "192.168.0.40:9100"
	Address string

	// ConnectionTimeout bounds establishing the TCP connection.
	// Default: 5 seconds
	ConnectionTimeout time.Duration

	// ReadTimeout bounds every individual read. A read that times out ends
	// the response instead of failing it.
	// Default: 5 seconds
	ReadTimeout time.Duration

	// WriteTimeout bounds writing one encoded command.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// ReadBufferSize is the size of the chunk buffer used while receiving.
	// Default: 1024 bytes
	ReadBufferSize int

	// ResponseComplete decides when a response has been fully received.
	// Default: TrailingQuote
	ResponseComplete ResponseCompleteFunc

	// RetryAttempts is the number of times to retry an operation that failed
	// to connect. Nothing is retried once bytes may have reached the printer.
	// Default: 0
	RetryAttempts int

	// RetryBaseDelay is the delay before the first retry, doubled on each attempt.
	// Default: 100 milliseconds
	RetryBaseDelay time.Duration

	// RetryMaxDelay caps the retry delay.
	// Default: 2 seconds
	RetryMaxDelay time.Duration

	// RetryJitter adds +/-25% random variation to retry delays.
	// Default: true
	RetryJitter bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Address:           "192.168.0.40:9100",
		ConnectionTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		ReadBufferSize:    1024,
		ResponseComplete:  TrailingQuote,
		RetryAttempts:     0,
		RetryBaseDelay:    100 * time.Millisecond,
		RetryMaxDelay:     2 * time.Second,
		RetryJitter:       true,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("address cannot be empty")
	}

	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return errors.New("address must be in host:port form")
	}

	if c.ConnectionTimeout <= 0 {
		return errors.New("connection timeout must be positive")
	}

	if c.ReadTimeout <= 0 {
		return errors.New("read timeout must be positive")
	}

	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}

	if c.ReadBufferSize <= 0 {
		return errors.New("read buffer size must be positive")
	}

	if c.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}

	if c.RetryBaseDelay < 0 || c.RetryMaxDelay < 0 {
		return errors.New("retry delay cannot be negative")
	}

	return nil
}

// WithAddress sets the printer address and returns the config for method chaining.
func (c *Config) WithAddress(address string) *Config {
	c.Address = address
	return c
}

// WithTimeout sets the connection, read and write timeouts at once.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.ConnectionTimeout = timeout
	c.ReadTimeout = timeout
	c.WriteTimeout = timeout
	return c
}

// WithConnectionTimeout sets the connection timeout and returns the config for method chaining.
func (c *Config) WithConnectionTimeout(timeout time.Duration) *Config {
	c.ConnectionTimeout = timeout
	return c
}

// WithReadTimeout sets the read timeout and returns the config for method chaining.
func (c *Config) WithReadTimeout(timeout time.Duration) *Config {
	c.ReadTimeout = timeout
	return c
}

// WithWriteTimeout sets the write timeout and returns the config for method chaining.
func (c *Config) WithWriteTimeout(timeout time.Duration) *Config {
	c.WriteTimeout = timeout
	return c
}

// WithReadBufferSize sets the receive chunk size and returns the config for method chaining.
func (c *Config) WithReadBufferSize(size int) *Config {
	c.ReadBufferSize = size
	return c
}

// WithResponseComplete swaps the response framing rule.
func (c *Config) WithResponseComplete(fn ResponseCompleteFunc) *Config {
	c.ResponseComplete = fn
	return c
}

// WithRetryAttempts sets the retry attempts and returns the config for method chaining.
func (c *Config) WithRetryAttempts(attempts int) *Config {
	c.RetryAttempts = attempts
	return c
}

// WithRetryBaseDelay sets the base retry delay and returns the config for method chaining.
func (c *Config) WithRetryBaseDelay(delay time.Duration) *Config {
	c.RetryBaseDelay = delay
	return c
}
