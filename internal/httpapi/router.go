// Package httpapi wires the HTTP surface of spec §6: the bearer-protected
// ingestion endpoints, the decoy login endpoints, the read-only stats
// endpoints, and the WebSocket upgrade — using gorilla/mux for routing.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chomnr/brute-go/internal/broadcast"
	"github.com/chomnr/brute-go/internal/middleware"
	"github.com/chomnr/brute-go/internal/projection"
	"github.com/chomnr/brute-go/internal/sink"
)

const (
	ingestionBodyLimitBytes = 60 * 1024
	decoyBodyLimitBytes     = 4 * 1024
)

// Deps collects everything the router needs to build handlers.
type Deps struct {
	Sink        *sink.Sink
	Store       LeaderboardIncrementer
	Projection  *projection.Projection
	Bus         *broadcast.Bus
	RateLimiter *middleware.RateLimiter
	BearerToken string
}

// NewRouter builds the full mux.Router for the ingestion/aggregation
// service, per spec §6's route table.
func NewRouter(deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORS)

	bearer := middleware.BearerAuth(deps.BearerToken)

	router.Handle("/brute/attack/add",
		middleware.BodyLimit(ingestionBodyLimitBytes)(bearer(http.HandlerFunc(handleAttackAdd(deps.Sink)))),
	).Methods(http.MethodPost)

	router.Handle("/brute/protocol/increment",
		middleware.BodyLimit(ingestionBodyLimitBytes)(bearer(http.HandlerFunc(handleProtocolIncrement(deps.Store)))),
	).Methods(http.MethodPost)

	router.Handle("/auth/login",
		middleware.BodyLimit(decoyBodyLimitBytes)(http.HandlerFunc(handleDecoyLogin(deps.Sink, "HTTP"))),
	).Methods(http.MethodPost)

	statsRouter := router.PathPrefix("/brute/stats").Subrouter()
	statsRouter.HandleFunc("/attack", handleEventLog(deps.Projection)).Methods(http.MethodGet)
	statsRouter.HandleFunc("/protocol", handleLeaderboard(deps.Projection, "top_protocol")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/country", handleLeaderboard(deps.Projection, "top_country")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/city", handleLeaderboard(deps.Projection, "top_city")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/region", handleLeaderboard(deps.Projection, "top_region")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/username", handleLeaderboard(deps.Projection, "top_username")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/password", handleLeaderboard(deps.Projection, "top_password")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/ip", handleLeaderboard(deps.Projection, "top_ip")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/combo", handleCombos(deps.Projection)).Methods(http.MethodGet)
	statsRouter.HandleFunc("/timezone", handleLeaderboard(deps.Projection, "top_timezone")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/org", handleLeaderboard(deps.Projection, "top_org")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/postal", handleLeaderboard(deps.Projection, "top_postal")).Methods(http.MethodGet)
	statsRouter.HandleFunc("/loc", handleEventLog(deps.Projection)).Methods(http.MethodGet)
	statsRouter.HandleFunc("/hourly", handleHourly(deps.Projection)).Methods(http.MethodGet)

	router.HandleFunc("/ws", deps.Bus.ServeWS)

	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware)
	}

	return router
}

// NewTLSRouter builds the minimal router served on the TLS listener: just
// the decoy HTTPS login, per spec §6.
func NewTLSRouter(deps Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORS)
	router.Handle("/auth/login",
		middleware.BodyLimit(decoyBodyLimitBytes)(http.HandlerFunc(handleDecoyLogin(deps.Sink, "HTTPS"))),
	).Methods(http.MethodPost)
	return router
}
