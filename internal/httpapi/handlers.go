package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/chomnr/brute-go/internal/apperr"
	"github.com/chomnr/brute-go/internal/model"
	"github.com/chomnr/brute-go/internal/projection"
	"github.com/chomnr/brute-go/internal/sink"
)

// LeaderboardIncrementer is the subset of internal/store the manual
// protocol-bump endpoint writes through, bypassing the Credential Sink
// and Aggregator entirely since no synthetic event is being recorded.
type LeaderboardIncrementer interface {
	UpsertLeaderboard(ctx context.Context, table, key string, delta int64) (model.LeaderboardRow, error)
}

type attackAddRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
	Protocol  string `json:"protocol"`
}

type protocolIncrementRequest struct {
	Protocol string `json:"protocol"`
	Amount   int    `json:"amount"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleAttackAdd implements POST /brute/attack/add: bearer auth already
// ran in the middleware chain, so only §4.1 validation remains.
func handleAttackAdd(s *sink.Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attackAddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		if err := s.Submit(req.Username, req.Password, req.IPAddress, req.Protocol); err != nil {
			writeAppErr(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// handleProtocolIncrement implements POST /brute/protocol/increment: a
// direct, admin-triggered bump of top_protocol that bypasses the
// Credential Sink and Aggregator mailbox, since no credential attempt is
// being recorded.
func handleProtocolIncrement(store LeaderboardIncrementer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req protocolIncrementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.Protocol == "" {
			writeError(w, http.StatusBadRequest, "input validation error: protocol is empty")
			return
		}
		if req.Amount <= 0 {
			req.Amount = 1
		}

		row, err := store.UpsertLeaderboard(r.Context(), "top_protocol", req.Protocol, int64(req.Amount))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to increment protocol leaderboard")
			return
		}
		writeJSON(w, row)
	}
}

// handleDecoyLogin implements the HTTP/HTTPS decoy login endpoints of
// spec §4.6: always 200, ingest using the request's real source IP.
func handleDecoyLogin(s *sink.Sink, protocol string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		ip := realIP(r)
		_ = s.Submit(req.Username, req.Password, ip, protocol)

		w.WriteHeader(http.StatusOK)
	}
}

func realIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleEventLog(p *projection.Projection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryLimit(r)
		rows, err := p.EventLog(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load event log")
			return
		}
		writeJSON(w, rows)
	}
}

func handleLeaderboard(p *projection.Projection, table string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryLimit(r)
		rows, err := p.Leaderboard(r.Context(), table, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
			return
		}
		writeJSON(w, rows)
	}
}

func handleCombos(p *projection.Projection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryLimit(r)
		rows, err := p.Combos(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load combos")
			return
		}
		writeJSON(w, rows)
	}
}

func handleHourly(p *projection.Projection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryLimit(r)
		rows, err := p.Hourly(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load hourly buckets")
			return
		}
		writeJSON(w, rows)
	}
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0
		}
		limit = limit*10 + int(c-'0')
	}
	return limit
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeAppErr(w http.ResponseWriter, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeError(w, appErr.StatusCode(), appErr.Message)
}
