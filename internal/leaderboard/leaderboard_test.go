package leaderboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/config"
	"github.com/Timmith/ld49/internal/persist"
)

type memStore struct {
	mu      sync.Mutex
	rows    []persist.LeaderRow
	details map[int64]string
	seen    map[string]bool
	now     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		details: make(map[int64]string),
		seen:    make(map[string]bool),
		now:     time.Date(2021, 10, 3, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) Top(_ context.Context, limit, offset int) ([]persist.LeaderRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := append([]persist.LeaderRow(nil), m.rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if offset > len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *memStore) Details(_ context.Context, id int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.details[id]
	if !ok {
		return "", persist.ErrNotFound
	}
	return d, nil
}

func (m *memStore) Record(_ context.Context, score int, summary, details string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[details] {
		return false, nil
	}
	m.seen[details] = true
	m.now = m.now.Add(time.Minute)
	id := int64(len(m.rows) + 1)
	m.rows = append(m.rows, persist.LeaderRow{ID: id, Score: score, Summary: summary, CreatedAt: m.now})
	m.details[id] = details
	return true, nil
}

func newService(t *testing.T) (*memStore, *Client) {
	t.Helper()
	store := newMemStore()
	srv := httptest.NewServer(NewServer(store, "*", 100, zap.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return store, NewClient(srv.URL+"/", srv.Client())
}

func TestServiceRoundTrip(t *testing.T) {
	_, c := newService(t)
	ctx := context.Background()

	require.NoError(t, c.Submit(ctx, Result{Score: 120, Summary: "AAA", Details: "a"}))
	require.NoError(t, c.Submit(ctx, Result{Score: 300, Summary: "BBB", Details: "b"}))
	require.NoError(t, c.Submit(ctx, Result{Score: 120, Summary: "CCC", Details: "c"}))
	require.NoError(t, c.Submit(ctx, Result{Score: 120, Summary: "CCC", Details: "c"}))

	leaders, err := c.Fetch(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, leaders, 3)
	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, []string{leaders[0].Summary, leaders[1].Summary, leaders[2].Summary})
	assert.Equal(t, []int{0, 1, 2}, []int{leaders[0].Place, leaders[1].Place, leaders[2].Place})

	page, err := c.Fetch(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "AAA", page[0].Summary)
	assert.Equal(t, 1, page[0].Place)

	d, err := c.Details(ctx, leaders[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "b", d)

	_, err = c.Details(ctx, 99)
	assert.ErrorContains(t, err, "404")
}

func TestServiceCORSAndErrors(t *testing.T) {
	h := NewServer(newMemStore(), "", 100, zap.NewNop()).Handler()

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		status  int
		methods string
	}{
		{"preflight", http.MethodOptions, "/record", "", http.StatusOK, "OPTIONS, POST"},
		{"bad limit", http.MethodGet, "/leaders?limit=x", "", http.StatusBadRequest, "GET"},
		{"negative offset", http.MethodGet, "/leaders?offset=-1", "", http.StatusBadRequest, "GET"},
		{"bad id", http.MethodGet, "/details?id=abc", "", http.StatusBadRequest, "GET"},
		{"bad body", http.MethodPost, "/record", "{", http.StatusBadRequest, "GET"},
		{"wrong method", http.MethodDelete, "/leaders", "", http.StatusMethodNotAllowed, "GET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.methods, rec.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestNormalizeInitials(t *testing.T) {
	tests := map[string]string{
		"abc":   "ABC",
		"a":     "A--",
		" xy ":  "XY-",
		"abcde": "ABC",
		"":      "---",
		"éo":    "ÉO-",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeInitials(in), in)
	}
}

func TestPlace(t *testing.T) {
	board := []Leader{{Place: 0, Score: 500}, {Place: 1, Score: 300}, {Place: 2, Score: 100}}
	assert.Equal(t, 3, Place(board, 50, 10), "room left on the board")
	assert.Equal(t, 1, Place(board, 400, 3))
	assert.Equal(t, -1, Place(board, 100, 3), "ties do not displace")
}

type fakeBoard struct {
	mu        sync.Mutex
	leaders   []Leader
	submitted []Result
	fetchErr  error
}

func (f *fakeBoard) Fetch(context.Context, int, int) ([]Leader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Leader(nil), f.leaders...), f.fetchErr
}

func (f *fakeBoard) Submit(_ context.Context, r Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, r)
	f.leaders = append(f.leaders, Leader{Place: len(f.leaders), Score: r.Score, Summary: r.Summary})
	return nil
}

func (f *fakeBoard) submissions() []Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Result(nil), f.submitted...)
}

func startReporter(t *testing.T, b Board, topN int) *Reporter {
	t.Helper()
	cfg := config.Default().Leaderboard
	cfg.Initials = "tim"
	cfg.TopN = topN
	r := NewReporter(b, cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return r
}

func TestReporterSubmitsPlacingScore(t *testing.T) {
	b := &fakeBoard{}
	r := startReporter(t, b, 10)
	r.Report(250, 2.5, []byte(`{"bodies":[]}`))

	select {
	case leaders := <-r.Updates():
		require.Len(t, leaders, 1)
		assert.Equal(t, 250, leaders[0].Score)
	case <-time.After(2 * time.Second):
		t.Fatal("no leader update")
	}
	subs := b.submissions()
	require.Len(t, subs, 1)
	assert.Equal(t, "TIM", subs[0].Summary)
	assert.Equal(t, `{"bodies":[]}`, subs[0].Details)
}

func TestReporterSkipsLowScore(t *testing.T) {
	b := &fakeBoard{leaders: []Leader{{Place: 0, Score: 900}, {Place: 1, Score: 800}}}
	r := startReporter(t, b, 2)
	r.Report(10, 0.1, nil)

	select {
	case leaders := <-r.Updates():
		assert.Len(t, leaders, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("no leader update")
	}
	assert.Empty(t, b.submissions())
}

func TestReporterSwallowsOutage(t *testing.T) {
	b := &fakeBoard{fetchErr: errors.New("connection refused")}
	r := startReporter(t, b, 10)
	r.Report(10, 0.1, nil)

	select {
	case <-r.Updates():
		t.Fatal("unexpected update")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Empty(t, b.submissions())
}
