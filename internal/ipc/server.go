package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"warden/internal/deps"
	"warden/internal/host"
	"warden/internal/logging"
	"warden/internal/logs"
)

// Server exposes host control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	host      *host.Host
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, h *host.Host, logger *slog.Logger) (*Server, error) {
	if h == nil {
		return nil, errors.New("ipc server requires host")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{host: h, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Warden", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		host:      h,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the host if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun warden stop"))
	}
}

type service struct {
	host   *host.Host
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("sidecar start requested")
	if err := s.host.StartSidecar(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "sidecar started"
	s.log().Info("sidecar started via IPC",
		logging.String(logging.FieldEventType, "sidecar_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("sidecar stop requested")
	s.host.StopSidecar()
	resp.Stopped = true
	s.log().Info("sidecar stopped via IPC",
		logging.String(logging.FieldEventType, "sidecar_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.host.Status()
	resp.Running = status.Running
	resp.PID = os.Getpid()
	resp.LockPath = status.LockFilePath
	resp.LogPath = status.LogFilePath
	resp.Sidecar = SidecarStatus{
		Running:      status.Sidecar.Running,
		PID:          status.Sidecar.PID,
		Entrypoint:   status.Sidecar.Entrypoint,
		ResourceRoot: status.Sidecar.ResourceRoot,
		Mode:         string(status.Sidecar.Mode),
		Port:         status.Sidecar.Port,
	}
	for _, dep := range deps.CheckBinaries(deps.DefaultRequirements(s.host.Config())) {
		resp.Dependencies = append(resp.Dependencies, DependencyStatus{
			Name:        dep.Name,
			Command:     dep.Command,
			Description: dep.Description,
			Optional:    dep.Optional,
			Available:   dep.Available,
			Detail:      dep.Detail,
		})
	}
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.host.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
	}
	ctx := s.ctx
	if req.Follow {
		options.Wait = time.Duration(req.WaitMillis) * time.Millisecond
		if options.Wait <= 0 {
			options.Wait = time.Second
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, options.Wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}
