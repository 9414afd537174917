package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/framewm/internal/frame"
)

// Handler executes IPC commands against the running window manager.
// Implementations must be safe to call from connection goroutines.
type Handler interface {
	Status(ctx context.Context) (StatusData, error)
	Frames(ctx context.Context) ([]frame.State, error)
	CloseFrame(ctx context.Context, id uint32) error
	ToggleMaximize(ctx context.Context, id uint32) error
	MinimizeFrame(ctx context.Context, id uint32) error
	Reload(ctx context.Context) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	handler    Handler
	logger     *slog.Logger
	startTime  time.Time
	timeout    time.Duration

	wg sync.WaitGroup
}

// NewServer creates a new IPC server listening on socketPath once served.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger.With("component", "ipc"),
		startTime:  time.Now(),
		timeout:    5 * time.Second,
	}
}

func (s *Server) String() string {
	return "ipc-server"
}

// Serve listens until ctx is done, then removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	stop := context.AfterFunc(ctx, func() { listener.Close() })
	defer stop()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return err
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(ctx, conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	s.send(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC request", "command", req.Command)

	switch req.Command {
	case CommandReload:
		if err := s.handler.Reload(ctx); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return ok(nil)
	case CommandGetStatus:
		status, err := s.handler.Status(ctx)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
		}
		status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
		status.DaemonRunning = true
		return ok(status)
	case CommandListFrames:
		frames, err := s.handler.Frames(ctx)
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to list frames: %v", err))
		}
		if frames == nil {
			frames = []frame.State{}
		}
		return ok(FramesData{Frames: frames})
	case CommandCloseFrame:
		return s.withClient(req.Payload, func(id uint32) error { return s.handler.CloseFrame(ctx, id) })
	case CommandToggleMaximize:
		return s.withClient(req.Payload, func(id uint32) error { return s.handler.ToggleMaximize(ctx, id) })
	case CommandMinimizeFrame:
		return s.withClient(req.Payload, func(id uint32) error { return s.handler.MinimizeFrame(ctx, id) })
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) withClient(payload json.RawMessage, fn func(id uint32) error) *Response {
	var p ClientPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid client payload: %v", err))
	}
	if p.ClientID == 0 {
		return NewErrorResponse("client_id is required")
	}
	if err := fn(p.ClientID); err != nil {
		return NewErrorResponse(err.Error())
	}
	return ok(nil)
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}
