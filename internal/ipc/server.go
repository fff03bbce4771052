// Package ipc implements the daemon's control channel: a single local
// endpoint speaking one newline-terminated JSON response per
// connection. The protocol is deliberately tiny; anything that can
// write a short token to a socket can drive the daemon.
package ipc

import (
	"encoding/json"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finnvos/voxd/internal/domain"
)

// maxCommandLen bounds a single command read. Valid tokens are a few
// bytes; anything longer is a confused or hostile client.
const maxCommandLen = 256

// Dispatcher executes one parsed command and returns the response to
// put on the wire. Implementations serialize internally; the server
// calls it from per-connection goroutines.
type Dispatcher func(cmd domain.Command) domain.Response

// Server owns the accept loop over an already-bound listener. The
// listener is injected so tests can bind a throwaway endpoint.
type Server struct {
	ln          net.Listener
	dispatch    Dispatcher
	readTimeout time.Duration
	logger      *zap.Logger

	wg     sync.WaitGroup
	closed sync.Once
}

func NewServer(ln net.Listener, dispatch Dispatcher, readTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		ln:          ln,
		dispatch:    dispatch,
		readTimeout: readTimeout,
		logger:      logger,
	}
}

// Serve accepts connections until the listener closes. It blocks, so
// callers run it in its own goroutine.
func (s *Server) Serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			// Listener closed during shutdown.
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and waits for in-flight connections to drain.
func (s *Server) Close() {
	s.closed.Do(func() {
		s.ln.Close()
	})
	s.wg.Wait()
}

// handleConn services exactly one command. A slow or silent client is
// cut off by the read deadline so a stuck connection can never wedge
// the control channel.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.readTimeout))

	buf := make([]byte, maxCommandLen)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		s.logger.Debug("ipc read failed", zap.Error(err))
		return
	}

	token := strings.TrimSpace(string(buf[:n]))
	cmd, known := domain.ParseCommand(token)

	var resp domain.Response
	if !known {
		s.logger.Warn("unknown ipc command", zap.String("command", token))
		resp = domain.Response{Status: domain.OutcomeUnknown}
	} else {
		resp = s.dispatch(cmd)
	}

	s.writeResponse(conn, resp)
}

func (s *Server) writeResponse(conn net.Conn, resp domain.Response) {
	out, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("marshal ipc response", zap.Error(err))
		return
	}
	out = append(out, '\n')
	conn.SetWriteDeadline(time.Now().Add(s.readTimeout))
	if _, err := conn.Write(out); err != nil {
		s.logger.Debug("ipc write failed", zap.Error(err))
	}
}
