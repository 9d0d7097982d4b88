package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Timmith/ld49/internal/persist"
)

// Store is the leaderboard table.
type Store interface {
	Top(ctx context.Context, limit, offset int) ([]persist.LeaderRow, error)
	Details(ctx context.Context, id int64) (string, error)
	Record(ctx context.Context, score int, summary, details string) (bool, error)
}

// Server serves /leaders, /details and /record.
type Server struct {
	store    Store
	origin   string
	maxLimit int
	log      *zap.Logger
}

func NewServer(store Store, origin string, maxLimit int, log *zap.Logger) *Server {
	if origin == "" {
		origin = "*"
	}
	return &Server{store: store, origin: origin, maxLimit: maxLimit, log: log}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/leaders", s.leaders)
	mux.HandleFunc("/details", s.details)
	mux.HandleFunc("/record", s.record)
	return mux
}

func (s *Server) cors(w http.ResponseWriter, methods string) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", s.origin)
	h.Set("Access-Control-Allow-Methods", methods)
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func (s *Server) leaders(w http.ResponseWriter, r *http.Request) {
	s.cors(w, "GET")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit, ok1 := queryInt(r, "limit", s.maxLimit)
	offset, ok2 := queryInt(r, "offset", 0)
	if !ok1 || !ok2 || limit < 0 || offset < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	rows, err := s.store.Top(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("query leaders", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	out := make([]Leader, len(rows))
	for i, row := range rows {
		out[i] = Leader{
			Place:     offset + i,
			ID:        row.ID,
			Score:     row.Score,
			Summary:   row.Summary,
			CreatedAt: row.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	s.writeJSON(w, out)
}

func (s *Server) details(w http.ResponseWriter, r *http.Request) {
	s.cors(w, "GET")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	details, err := s.store.Details(r.Context(), id)
	if errors.Is(err, persist.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("query details", zap.Int64("id", id), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, struct {
		Details string `json:"details"`
	}{details})
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		s.cors(w, "OPTIONS, POST")
		return
	case http.MethodPost:
		s.cors(w, "GET")
	default:
		s.cors(w, "OPTIONS, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var res Result
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&res); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	inserted, err := s.store.Record(r.Context(), res.Score, res.Summary, res.Details)
	if err != nil {
		s.log.Error("record result", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !inserted {
		s.log.Info("duplicate replay ignored", zap.Int("score", res.Score), zap.String("summary", res.Summary))
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
