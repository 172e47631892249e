package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// Server es el servidor Unix socket
type Server struct {
	socketPath string
	listener   net.Listener
	handlers   *Handlers
	logger     hclog.Logger
}

// Request representa una petición al daemon
type Request struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Response representa una respuesta del daemon
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewServer crea un nuevo servidor
func NewServer(socketPath string, handlers *Handlers, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		socketPath: socketPath,
		handlers:   handlers,
		logger:     logger.Named("server"),
	}
}

// Start abre el socket y empieza a aceptar conexiones
func (s *Server) Start(ctx context.Context) error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}

	// Limpiar socket anterior si existe
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}

	s.logger.Info("listening", "socket", s.socketPath)

	go s.acceptLoop(ctx)

	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept error", "error", err)
			continue
		}

		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.sendError(conn, fmt.Errorf("decode request: %w", err))
		return
	}

	s.logger.Debug("request", "action", req.Action)

	resp := s.Dispatch(ctx, req)

	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

// Dispatch enruta una petición a su handler
func (s *Server) Dispatch(ctx context.Context, req Request) Response {
	switch req.Action {
	case "submit":
		return s.handlers.HandleSubmit(ctx, req.Payload)
	case "status":
		return s.handlers.HandleStatus(ctx, req.Payload)
	case "batch":
		return s.handlers.HandleBatch(ctx, req.Payload)
	case "list":
		return s.handlers.HandleList(ctx, req.Payload)
	case "stats":
		return s.handlers.HandleStats(ctx)
	case "catalog":
		return s.handlers.HandleCatalog()
	case "ping":
		return Response{Success: true, Data: json.RawMessage(`{"message":"pong"}`)}
	default:
		return errorResponse("unknown action: %s", req.Action)
	}
}

func (s *Server) sendError(conn net.Conn, err error) {
	json.NewEncoder(conn).Encode(Response{Success: false, Error: err.Error()})
}

// Stop cierra el listener y borra el socket
func (s *Server) Stop() error {
	s.logger.Info("server stopping")
	if s.listener == nil {
		return nil
	}
	err := s.listener.Close()
	os.Remove(s.socketPath)
	return err
}
