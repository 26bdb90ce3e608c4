// Package server implements the Listener and Connection Worker: it accepts
// TCP connections and drives each one's Frame Reader -> Executor -> writer
// loop until the client disconnects or an unrecoverable parse error occurs.
//
// Grounded on the reference implementation's RedisServer.Listen/handleClient,
// restructured around internal/resp and internal/command, and logging
// through an injected *zap.Logger instead of package-level log.Printf calls.
package server

import (
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/rsciampacone/kvhacking/internal/command"
	"github.com/rsciampacone/kvhacking/internal/config"
	"github.com/rsciampacone/kvhacking/internal/resp"
	"github.com/rsciampacone/kvhacking/internal/store"
)

// Server owns the listening socket, the shared Datastore, and the command
// registry every connection dispatches through.
type Server struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
	reg   *command.Registry

	listener net.Listener
}

// New builds a Server bound to cfg.Addr. The listening socket is opened on
// the first call to ListenAndServe.
func New(cfg config.Config, log *zap.Logger) *Server {
	return &Server{
		cfg:   cfg,
		log:   log,
		store: store.New(),
		reg:   command.New(),
	}
}

// Addr returns the address the server is actually listening on. It is only
// valid after ListenAndServe has successfully bound the socket — a caller
// can use it to discover the OS-assigned port when Config.Addr is ":0".
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// ListenAndServe binds the configured address and accepts connections
// indefinitely, spawning one worker goroutine per connection. It returns
// only on a listener error (spec.md §4.5: accepts are not gated on worker
// count — backpressure, if any, is the OS accept queue).
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.log.Error("accept failed", zap.Error(err))
			return err
		}
		go s.handle(conn)
	}
}

// Close stops accepting new connections. Connections already being served
// are not forcibly closed.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handle is the Connection Worker: it owns conn exclusively for its
// lifetime, looping Frame Reader -> Executor -> reply write until the
// client disconnects or a parse/transport error ends the connection.
func (s *Server) handle(conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.log.Info("connection opened", zap.String("remote", remote))

	defer func() {
		conn.Close()
		s.log.Info("connection closed", zap.String("remote", remote))
	}()

	reader := resp.NewReader(conn)
	for {
		statement, err := reader.ReadStatement()
		if err != nil {
			// A clean EOF before any byte of a new frame is an ordinary
			// disconnect; anything else (malformed frame, or EOF mid-frame,
			// which resp.ErrProtocol also covers) is logged before the
			// connection is dropped (spec.md §4.4 step 3, §7).
			if !errors.Is(err, io.EOF) {
				s.log.Error("protocol error", zap.String("remote", remote), zap.Error(err))
			}
			return
		}

		reply := s.reg.Execute(s.store, statement)
		if _, err := reply.WriteTo(conn); err != nil {
			s.log.Error("write failed", zap.String("remote", remote), zap.Error(err))
			return
		}
	}
}
