// Package api talks to Zebra-style label printers over their raw TCP port.
// It encodes SGD get/set/do commands and ~DY file uploads and carries them
// over a lazily connected Session.
package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EzhovAndrew/zulu/internal/concurrency"
	"github.com/EzhovAndrew/zulu/internal/logging"
)

// SGD variables and actions used to switch the printer to https.
const (
	httpsEnableVariable = "ip.https.enable"
	httpsPortVariable   = "ip.https.port"
	resetAction         = "device.reset"
)

// DefaultHTTPSPort is the port the printer serves https on after UploadSSL.
const DefaultHTTPSPort = 443

// Transport carries encoded commands to the printer. *Session implements it.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
}

// Client composes the codecs and a Transport into printer operations.
// Each method runs as a unit: concurrent calls never interleave their bytes
// on the connection.
type Client struct {
	config    *Config
	transport Transport
	mutex     sync.Mutex
}

// NewClient creates a client over a new Session.
// If config is nil, default configuration will be used.
//
// Example:
//
//	client, err := api.NewClient(api.DefaultConfig().WithAddress("10.0.0.7:9100"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	model, err := client.Get(ctx, "device.product_name")
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	session, err := NewSession(config)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:    config,
		transport: session,
	}, nil
}

// NewClientWithTransport creates a client over an existing transport.
func NewClientWithTransport(config *Config, transport Transport) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if transport == nil {
		return nil, &InvalidArgumentError{Message: "transport cannot be nil"}
	}

	return &Client{
		config:    config,
		transport: transport,
	}, nil
}

// Execute encodes and sends any command. For a GetCommand it also reads the
// reply and returns it raw; for every other command the result is nil.
func (c *Client) Execute(ctx context.Context, cmd Command) ([]byte, error) {
	var response []byte
	err := concurrency.WithLock(&c.mutex, func() error {
		var err error
		response, err = c.execute(ctx, cmd)
		return err
	})
	return response, err
}

// GetBytes reads a printer variable and returns the raw reply, quotes included.
// An empty reply is not an error.
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, &InvalidArgumentError{Message: "key cannot be empty"}
	}
	return c.Execute(ctx, GetCommand{Key: key})
}

// Get reads a printer variable as text with the surrounding quotes removed.
// Invalid UTF-8 is replaced rather than rejected.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	data, err := c.GetBytes(ctx, key)
	if err != nil {
		return "", err
	}
	return DisplayResponse(data), nil
}

// Set writes a printer variable. The printer does not acknowledge it.
func (c *Client) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return &InvalidArgumentError{Message: "key cannot be empty"}
	}
	_, err := c.Execute(ctx, SetCommand{Key: key, Value: value})
	return err
}

// Do invokes a printer action; value may be empty.
func (c *Client) Do(ctx context.Context, action, value string) error {
	if action == "" {
		return &InvalidArgumentError{Message: "action cannot be empty"}
	}
	_, err := c.Execute(ctx, DoCommand{Key: action, Value: value})
	return err
}

// UploadFile stores the file at path on the printer as destination.
// An unreadable file fails with *EncodingInputError before anything is sent.
func (c *Client) UploadFile(ctx context.Context, location StorageLocation, path, destination string) error {
	if destination == "" {
		return &InvalidArgumentError{Message: "destination cannot be empty"}
	}
	if !location.Valid() {
		return &InvalidArgumentError{Message: fmt.Sprintf("unknown storage location %q", location.String())}
	}

	directive, err := ReadUploadDirective(location, path, destination)
	if err != nil {
		return err
	}

	_, err = c.Execute(ctx, directive)
	return err
}

// SSLOptions describes an https setup.
type SSLOptions struct {
	Bundle SSLBundle
	// Port is the https port, DefaultHTTPSPort when zero.
	Port int
	// Reset restarts the printer afterwards so the settings apply.
	Reset bool
}

// UploadSSL uploads the CA, certificate and key to Flash, enables https on
// the given port and optionally resets the printer. All three files are read
// before anything is sent.
func (c *Client) UploadSSL(ctx context.Context, opts SSLOptions) error {
	port := opts.Port
	if port == 0 {
		port = DefaultHTTPSPort
	}
	if port < 0 || port > 65535 {
		return &InvalidArgumentError{Message: "https port must be between 1 and 65535"}
	}

	directives, err := opts.Bundle.Directives()
	if err != nil {
		return err
	}

	commands := make([]Command, 0, len(directives)+3)
	for _, directive := range directives {
		commands = append(commands, directive)
	}
	commands = append(commands,
		SetCommand{Key: httpsEnableVariable, Value: "on"},
		SetCommand{Key: httpsPortVariable, Value: strconv.Itoa(port)},
	)
	if opts.Reset {
		commands = append(commands, DoCommand{Key: resetAction})
	} else {
		logging.Warn("skipping reset, updated settings won't apply until the printer is reset")
	}

	return concurrency.WithLock(&c.mutex, func() error {
		for _, cmd := range commands {
			logging.Info("sending ssl setup step", zap.String("step", describe(cmd)))
			if _, err := c.execute(ctx, cmd); err != nil {
				return fmt.Errorf("%s: %w", describe(cmd), err)
			}
		}
		return nil
	})
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return concurrency.WithLock(&c.mutex, func() error {
		return c.transport.Close()
	})
}

// DisplayResponse renders a raw reply for humans: lossy UTF-8 with every '"' removed.
func DisplayResponse(data []byte) string {
	return strings.ReplaceAll(strings.ToValidUTF8(string(data), "\uFFFD"), `"`, "")
}

// execute runs one command with retries. Caller must hold c.mutex.
func (c *Client) execute(ctx context.Context, cmd Command) ([]byte, error) {
	data, err := Encode(cmd)
	if err != nil {
		return nil, err
	}

	var response []byte
	err = c.retryOperation(ctx, func() error {
		if err := c.transport.Send(ctx, data); err != nil {
			return err
		}
		if !ExpectsResponse(cmd) {
			return nil
		}
		var err error
		response, err = c.transport.Receive(ctx)
		return err
	})
	return response, err
}

func describe(cmd Command) string {
	switch c := cmd.(type) {
	case GetCommand:
		return "get " + c.Key
	case SetCommand:
		return "set " + c.Key
	case DoCommand:
		return "do " + c.Key
	case UploadDirective:
		return "upload " + c.DestinationName
	default:
		return fmt.Sprintf("%T", cmd)
	}
}

// ===============================================
// RETRY LOGIC IMPLEMENTATION
// ===============================================

// isRetryableError reports whether err happened before any byte reached the
// printer. Write and read failures are never retried: the printer may
// already have applied the command.
func (c *Client) isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrConnectionFailed)
}

// calculateRetryDelay computes the delay for a retry attempt using exponential backoff with jitter.
func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	baseDelay := c.config.RetryBaseDelay
	if baseDelay == 0 {
		baseDelay = 100 * time.Millisecond
	}

	delay := baseDelay << attempt

	if c.config.RetryMaxDelay > 0 && delay > c.config.RetryMaxDelay {
		delay = c.config.RetryMaxDelay
	}

	if c.config.RetryJitter {
		delay += c.calculateJitter(delay)
	}

	return delay
}

// calculateJitter returns a value between -25% and +25% of the input delay.
func (c *Client) calculateJitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}

	jitterRange := delay / 4

	randomBig, err := rand.Int(rand.Reader, big.NewInt(int64(jitterRange*2)+1))
	if err != nil {
		return 0
	}

	return time.Duration(randomBig.Int64()) - jitterRange
}

// retryOperation wraps an operation with retry logic using exponential backoff and jitter.
func (c *Client) retryOperation(ctx context.Context, operation func() error) error {
	if c.config.RetryAttempts <= 0 {
		return operation()
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == c.config.RetryAttempts || !c.isRetryableError(err) {
			break
		}

		delay := c.calculateRetryDelay(attempt)
		logging.Info("retrying after connection failure",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}
