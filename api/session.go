package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EzhovAndrew/zulu/internal/logging"
)

// SessionState tells whether a Session currently holds a connection.
type SessionState int

const (
	Unconnected SessionState = iota
	Connected
)

func (s SessionState) String() string {
	switch s {
	case Connected:
		return "connected"
	default:
		return "unconnected"
	}
}

// Session is one TCP connection to one printer.
//
// The connection is dialed on first use and reused by every later Send and
// Receive. Any I/O failure drops it so the next call dials again. A Session
// is not safe for concurrent use: operations must be issued one at a time,
// and the printer sees them in call order.
type Session struct {
	id     string
	config *Config

	conn   net.Conn
	writer *bufio.Writer
	buffer []byte
}

// NewSession creates an unconnected session. If config is nil, default
// configuration will be used.
func NewSession(config *Config) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Session{
		id:     uuid.NewString(),
		config: config,
		buffer: make([]byte, config.ReadBufferSize),
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() SessionState {
	if s.conn == nil {
		return Unconnected
	}
	return Connected
}

// Connect dials the printer unless a connection already exists.
// Refused, unreachable and unresolvable addresses all return *ConnectionError.
func (s *Session) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil // Already connected
	}

	dialer := &net.Dialer{
		Timeout: s.config.ConnectionTimeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", s.config.Address)
	if err != nil {
		logging.Debug("unable to connect to printer",
			zap.String("session_id", s.id),
			zap.String("address", s.config.Address),
			zap.Error(err))
		return &ConnectionError{
			Address: s.config.Address,
			Err:     err,
		}
	}

	s.conn = conn
	s.writer = bufio.NewWriter(conn)
	logging.Info("Connected to printer",
		zap.String("session_id", s.id),
		zap.String("address", s.config.Address))
	return nil
}

// Send writes data in full and flushes it, connecting first if needed.
func (s *Session) Send(ctx context.Context, data []byte) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout)); err != nil {
		return s.fail("set write deadline", err)
	}

	n, err := s.writer.Write(data)
	if err != nil {
		return s.fail("write", err)
	}
	if n != len(data) {
		return s.fail("write", fmt.Errorf("%w: wrote %d bytes, expected %d", io.ErrShortWrite, n, len(data)))
	}

	if err := s.writer.Flush(); err != nil {
		return s.fail("flush", err)
	}

	logging.Debug("sent bytes to printer",
		zap.String("session_id", s.id),
		zap.Int("bytes", len(data)))
	return nil
}

// Receive collects the printer's reply, connecting first if needed.
//
// Chunks are read until one of: the peer closes the connection, the
// configured ResponseCompleteFunc accepts a chunk, or a read times out.
// A timeout is the normal end of a reply that the framing rule cannot
// recognise and is not reported as an error. The result may be empty.
func (s *Session) Receive(ctx context.Context) ([]byte, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	complete := s.config.ResponseComplete
	if complete == nil {
		complete = TrailingQuote
	}

	var response []byte
	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout)); err != nil {
			return nil, s.fail("set read deadline", err)
		}

		n, err := s.conn.Read(s.buffer)
		if n > 0 {
			response = append(response, s.buffer[:n]...)
			if complete(response, response[len(response)-n:]) {
				break
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				logging.Info("read timeout reached",
					zap.String("session_id", s.id),
					zap.Int("bytes", len(response)))
				break
			}
			return nil, s.fail("read", err)
		}

		if n == 0 {
			break
		}
	}

	logging.Debug("received bytes from printer",
		zap.String("session_id", s.id),
		zap.Int("bytes", len(response)))
	return response, nil
}

// Close releases the connection. It's safe to call Close multiple times.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	s.writer = nil

	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	logging.Info("Connection closed", zap.String("session_id", s.id))
	return nil
}

// fail drops the connection after an I/O error on it.
func (s *Session) fail(op string, err error) error {
	logging.Warn("printer connection failed",
		zap.String("session_id", s.id),
		zap.String("op", op),
		zap.Error(err))

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
		s.writer = nil
	}
	return &NetworkError{Op: op, Err: err}
}
