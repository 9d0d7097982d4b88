package net

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
)

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
		err  bool
	}{
		{`{"type":"cursorStart","x":0.5,"y":-1}`, Command{Type: CmdCursorStart, X: 0.5, Y: -1}, false},
		{`{"type":"wheel","delta":125}`, Command{Type: CmdWheel, Delta: 125}, false},
		{`{"type":"save"}`, Command{Type: CmdSave}, false},
		{`{"type":"fly"}`, Command{}, true},
		{`not json`, Command{}, true},
	}
	for _, tt := range tests {
		got, err := DecodeCommand([]byte(tt.in))
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func dial(t *testing.T, s *Server) (*websocket.Conn, *Session) {
	t.Helper()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case sess := <-s.NewSessions():
		return conn, sess
	case <-time.After(2 * time.Second):
		t.Fatal("no session")
	}
	return nil, nil
}

func TestSessionRoundTrip(t *testing.T) {
	s := newServer(config.Default().Network, zap.NewNop())
	conn, sess := dial(t, s)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"skip"}`)))
	select {
	case msg := <-sess.InQueue:
		assert.JSONEq(t, `{"type":"skip"}`, string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("command not queued")
	}

	sess.Send([]byte(`{"tick":1}`))
	sess.Send([]byte(`{"tick":2}`))
	sess.FlushOutput()
	for _, want := range []string{`{"tick":1}`, `{"tick":2}`} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, string(msg))
	}
}

func TestSessionCloseReportsDead(t *testing.T) {
	s := newServer(config.Default().Network, zap.NewNop())
	conn, sess := dial(t, s)

	conn.Close()
	select {
	case id := <-s.DeadSessions():
		assert.Equal(t, sess.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("dead session not reported")
	}
	assert.True(t, sess.IsClosed())

	sess.Send([]byte("ignored"))
	sess.FlushOutput()
}

func TestSlowClientDropped(t *testing.T) {
	cfg := config.Default().Network
	cfg.OutQueueSize = 1
	s := newServer(cfg, zap.NewNop())
	_, sess := dial(t, s)

	for i := 0; i < 64; i++ {
		sess.Send([]byte(strings.Repeat("x", 1024)))
	}
	sess.FlushOutput()
	assert.True(t, sess.IsClosed())
}

func TestOriginCheck(t *testing.T) {
	cfg := config.Default().Network
	cfg.AllowedOrigin = "https://pillars.example"
	s := newServer(cfg, zap.NewNop())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"

	_, resp, err := websocket.DefaultDialer.Dial(url, map[string][]string{"Origin": {"https://elsewhere.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestSessionStore(t *testing.T) {
	s := newServer(config.Default().Network, zap.NewNop())
	_, sess := dial(t, s)

	store := NewSessionStore()
	store.Add(sess)
	assert.Equal(t, 1, store.Len())
	assert.Same(t, sess, store.Get(sess.ID))

	n := 0
	store.ForEach(func(*Session) { n++ })
	assert.Equal(t, 1, n)

	store.Remove(sess.ID)
	assert.Zero(t, store.Len())
	assert.Nil(t, store.Get(sess.ID))
}
