package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
)

// Server accepts websocket clients on the feed path and creates Sessions.
// New/dead sessions are communicated to the game loop via channels.
type Server struct {
	listener net.Listener
	http     *http.Server
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64 // session IDs of dead sessions
	cfg      config.NetworkConfig
	log      *zap.Logger
}

func NewServer(cfg config.NetworkConfig, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	s := newServer(cfg, log)
	s.listener = ln
	return s, nil
}

func newServer(cfg config.NetworkConfig, log *zap.Logger) *Server {
	s := &Server{
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		cfg:      cfg,
		log:      log,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	mux := http.NewServeMux()
	mux.HandleFunc(cfg.FeedPath, s.handleFeed)
	s.http = &http.Server{Handler: mux}
	return s
}

// Serve runs the HTTP server until Shutdown.
func (s *Server) Serve() error {
	s.log.Info("feed listening", zap.String("addr", s.listener.Addr().String()), zap.String("path", s.cfg.FeedPath))
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the feed route.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.AllowedOrigin
	if allowed == "" || allowed == "*" {
		return true
	}
	return r.Header.Get("Origin") == allowed
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, s.cfg, s.log)
	sess.onClose = s.NotifyDead
	sess.Start()

	s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	select {
	case s.newConns <- sess:
	default:
		s.log.Warn("session queue full, rejecting client")
		sess.Close()
	}
}

// NewSessions returns the channel of newly connected sessions.
func (s *Server) NewSessions() <-chan *Session {
	return s.newConns
}

// NotifyDead reports a dead session ID to the game loop.
func (s *Server) NotifyDead(sessionID uint64) {
	select {
	case s.deadCh <- sessionID:
	default:
	}
}

// DeadSessions returns the channel of dead session IDs.
func (s *Server) DeadSessions() <-chan uint64 {
	return s.deadCh
}

// Shutdown stops accepting clients.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
