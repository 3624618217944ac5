// Package httpserver is the REST and WebSocket surface in front of the
// engine. All per-order input validation happens here, before Submit.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"talos/service"
)

type Server struct {
	svc     *service.OrderService
	router  *mux.Router
	hub     *Hub
	origins []string
	log     *zap.Logger
}

func NewServer(svc *service.OrderService, hub *Hub, origins []string, log *zap.Logger) *Server {
	s := &Server{
		svc:     svc,
		router:  mux.NewRouter(),
		hub:     hub,
		origins: origins,
		log:     log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")
	api.HandleFunc("/sequence", s.handleGetSequence).Methods("GET")
	api.HandleFunc("/markets/{symbol}/state", s.handleGetMarketState).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
}

// Handler returns the fully wired http handler, for tests and for Start.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.router)
}

// Start runs the hub broadcast loop and serves HTTP until the listener
// fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.log.Info("http server starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	side, err := req.validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ack, err := s.svc.Submit(service.SubmitRequest{
		Symbol:   req.Symbol,
		Side:     side,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, service.ErrStopped) {
			respondError(w, http.StatusServiceUnavailable, "engine stopped")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, ack)
}

func (s *Server) handleGetSequence(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, sequenceResponse{Sequence: s.svc.LastProcessedSeq()})
}

func (s *Server) handleGetMarketState(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	respondJSON(w, http.StatusOK, s.svc.MarketState(symbol))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
