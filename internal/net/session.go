package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
)

const maxMessageSize = 4096

// Session is a single feed client. Network I/O runs in dedicated
// goroutines; game state is accessed only from the game loop.
type Session struct {
	ID   uint64
	conn *websocket.Conn
	IP   string

	InQueue  chan []byte // game loop reads commands from here
	OutQueue chan []byte // writer goroutine reads from here

	outBuf [][]byte // buffered frames, flushed by the output system (game loop only)

	readTimeout  time.Duration
	writeTimeout time.Duration
	onClose      func(id uint64)

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, cfg config.NetworkConfig, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		conn:         conn,
		IP:           conn.RemoteAddr().String(),
		InQueue:      make(chan []byte, cfg.InQueueSize),
		OutQueue:     make(chan []byte, cfg.OutQueueSize),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a message. Nothing is written until FlushOutput.
// Game loop only.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, data)
}

// FlushOutput hands buffered messages to the writer. A client that cannot
// keep up is disconnected.
func (s *Session) FlushOutput() {
	for _, data := range s.outBuf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close shuts the session down once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s.ID)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

func (s *Session) readLoop() {
	defer s.Close()
	s.conn.SetReadLimit(maxMessageSize)

	for {
		if s.readTimeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		}
		kind, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		// Block until there is room; this only stalls this client.
		select {
		case s.InQueue <- data:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.writeTimeout > 0 {
				s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
