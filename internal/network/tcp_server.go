package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EzhovAndrew/zulu/internal/concurrency"
	"github.com/EzhovAndrew/zulu/internal/configuration"
	"github.com/EzhovAndrew/zulu/internal/logging"
	"github.com/EzhovAndrew/zulu/internal/utils"
)

const readChunkSize = 4096

// TCPHandler consumes raw bytes from one connection and returns the bytes to
// write back, if any. The stream has no framing: data may hold a partial
// command or several commands.
type TCPHandler = func(ctx context.Context, data []byte) []byte

// HandlerFactory creates the handler for a new connection so each
// connection can keep its own parse state.
type HandlerFactory = func() TCPHandler

type TCPServer struct {
	listener      net.Listener
	semaphore     *concurrency.Semaphore
	connectionsWg sync.WaitGroup
	bufferPool    sync.Pool

	cfg *configuration.SimulatorConfig
}

func NewTCPServer(cfg *configuration.SimulatorConfig) (*TCPServer, error) {
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("unable to start listener: %w", err)
	}
	return &TCPServer{
		listener:  listener,
		semaphore: concurrency.NewSemaphore(cfg.MaxConnections),
		cfg:       cfg,
		bufferPool: sync.Pool{
			New: func() any {
				slice := make([]byte, readChunkSize)
				return &slice
			},
		},
	}, nil
}

// Addr is the address the server listens on.
func (s *TCPServer) Addr() net.Addr {
	return s.listener.Addr()
}

// HandleRequests serves connections until ctx is cancelled.
func (s *TCPServer) HandleRequests(ctx context.Context, newHandler HandlerFactory) {
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		s.acceptConnections(ctx, newHandler)
	}()

	s.waitForShutdown(ctx)
	wg.Wait()
	s.gracefulShutdown()
}

func (s *TCPServer) acceptConnections(ctx context.Context, newHandler HandlerFactory) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Error("unable to accept connection", zap.Error(err))
			continue
		}

		if !s.semaphore.TryAcquire() {
			s.rejectConnection(conn)
			continue
		}

		s.connectionsWg.Add(1)
		go func(conn net.Conn) {
			defer s.semaphore.Release()
			defer s.connectionsWg.Done()
			connCtx := utils.ContextWithConnectionID(ctx, uuid.NewString())
			s.handleConnection(connCtx, conn, newHandler())
		}(conn)
	}
}

func (s *TCPServer) handleConnection(ctx context.Context, conn net.Conn, handler TCPHandler) {
	defer s.recoverAndCloseConnection(conn)

	connectionID, _ := utils.ConnectionIDFromContext(ctx)
	logging.Info("printer connection opened",
		zap.String("connection_id", connectionID),
		zap.String("address", conn.RemoteAddr().String()))

	buffer := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(buffer)

	for {
		if s.shouldStopConnection(ctx) {
			return
		}

		data, err := s.readChunk(conn, buffer)
		if err != nil {
			if s.isConnectionClosed(err) {
				logging.Info("printer connection closed", zap.String("connection_id", connectionID))
				return
			}
			logging.Warn("unable to read from connection",
				zap.String("connection_id", connectionID),
				zap.Error(err))
			return
		}

		response := handler(ctx, data)
		if len(response) == 0 {
			continue
		}
		if err := s.writeWithDeadline(conn, response); err != nil {
			logging.Warn("unable to write response to connection",
				zap.String("connection_id", connectionID),
				zap.Error(err))
			return
		}
	}
}

func (s *TCPServer) rejectConnection(conn net.Conn) {
	logging.Warn("connection limit reached, rejecting",
		zap.String("address", conn.RemoteAddr().String()),
		zap.Int("in_use", s.semaphore.InUse()))
	if err := conn.Close(); err != nil {
		logging.Warn("error in conn.Close()", zap.Error(err))
	}
}

func (s *TCPServer) waitForShutdown(ctx context.Context) {
	<-ctx.Done()
	err := s.listener.Close()
	if err != nil {
		logging.Warn("error in listener.Close()", zap.Error(err))
	}
}

func (s *TCPServer) gracefulShutdown() {
	done := make(chan struct{})
	go func() {
		s.connectionsWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections completed gracefully")
	case <-time.After(s.cfg.GracefulShutdownTimeout):
		logging.Warn("Shutdown timeout reached, some connections may have been forcefully closed")
	}
}

func (s *TCPServer) recoverAndCloseConnection(conn net.Conn) {
	if v := recover(); v != nil {
		logging.Error("captured panic in connection", zap.Any("panic", v))
	}

	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Error("failed to close connection", zap.Error(err))
	}
}

func (s *TCPServer) shouldStopConnection(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (s *TCPServer) readChunk(conn net.Conn, buffer *[]byte) ([]byte, error) {
	err := conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	if err != nil {
		logging.Warn("unable to set read deadline", zap.Error(err))
		return nil, err
	}

	count, err := conn.Read(*buffer)
	if count > 0 {
		return (*buffer)[:count], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func (s *TCPServer) isConnectionClosed(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF)
}

func (s *TCPServer) writeWithDeadline(conn net.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
		return fmt.Errorf("unable to set write deadline: %w", err)
	}

	_, err := conn.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write data: %w", err)
	}

	return nil
}
