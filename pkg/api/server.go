// Package api exposes the engine over REST plus a WebSocket event stream.
// The gateway plays the settlement host's outer edge: it authenticates
// nothing, it just shapes requests into engine calls and renders the
// resulting instructions and attributes back to the client.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/openbilateral/bilateral/pkg/exchange"
	"github.com/openbilateral/bilateral/pkg/storage"
)

// Server handles REST API and WebSocket connections.
type Server struct {
	engine *exchange.Engine
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewServer(engine *exchange.Engine, log *zap.SugaredLogger) *Server {
	s := &Server{
		engine: engine,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Contract lifecycle
	api.HandleFunc("/contract", s.handleInstantiate).Methods("POST")
	api.HandleFunc("/contract", s.handleGetContractInfo).Methods("GET")
	api.HandleFunc("/contract/fees", s.handleUpdateFees).Methods("POST")
	api.HandleFunc("/contract/migrate", s.handleMigrate).Methods("POST")

	// Orders
	api.HandleFunc("/asks", s.handleCreateAsk).Methods("POST")
	api.HandleFunc("/asks/{id}", s.handleGetAsk).Methods("GET")
	api.HandleFunc("/asks/{id}/cancel", s.handleCancelAsk).Methods("POST")
	api.HandleFunc("/bids", s.handleCreateBid).Methods("POST")
	api.HandleFunc("/bids/{id}", s.handleGetBid).Methods("GET")
	api.HandleFunc("/bids/{id}/cancel", s.handleCancelBid).Methods("POST")

	// Matching
	api.HandleFunc("/matches", s.handleExecuteMatch).Methods("POST")

	// Event stream
	s.router.HandleFunc("/ws", s.handleWebSocket)

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the full middleware-wrapped handler; used by Start and by
// tests.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})
	return c.Handler(s.router)
}

// Start runs the hub and serves until the listener fails.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ==============================
// Contract handlers
// ==============================

func (s *Server) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	var req InstantiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.Instantiate(
		exchange.MsgInfo{Sender: sender},
		exchange.InstantiateMsg{
			BindName:     req.BindName,
			ContractName: req.ContractName,
			AskFee:       req.AskFee,
			BidFee:       req.BidFee,
		},
	)
	s.respondCall(w, result, err)
}

func (s *Server) handleGetContractInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.engine.GetContractInfo()
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "contract not instantiated", "")
			return
		}
		respondError(w, http.StatusInternalServerError, "query failed", err.Error())
		return
	}
	respondJSON(w, info)
}

func (s *Server) handleUpdateFees(w http.ResponseWriter, r *http.Request) {
	var req UpdateFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.UpdateFees(exchange.MsgInfo{Sender: sender}, req.AskFee, req.BidFee)
	s.respondCall(w, result, err)
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	result, err := s.engine.Migrate()
	s.respondCall(w, result, err)
}

// ==============================
// Order handlers
// ==============================

func (s *Server) handleCreateAsk(w http.ResponseWriter, r *http.Request) {
	var req CreateAskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.CreateAsk(
		exchange.MsgInfo{Sender: sender, Funds: req.Funds},
		req.ID, req.Quote, req.ScopeAddress,
	)
	s.respondCall(w, result, err)
}

func (s *Server) handleGetAsk(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.engine.GetAsk(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "ask not found", "")
			return
		}
		respondError(w, http.StatusInternalServerError, "query failed", err.Error())
		return
	}
	respondJSON(w, order)
}

func (s *Server) handleCancelAsk(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.CancelAsk(exchange.MsgInfo{Sender: sender, Funds: req.Funds}, id)
	s.respondCall(w, result, err)
}

func (s *Server) handleCreateBid(w http.ResponseWriter, r *http.Request) {
	var req CreateBidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.CreateBid(
		exchange.MsgInfo{Sender: sender, Funds: req.Funds},
		req.ID, req.Base, req.EffectiveTime,
	)
	s.respondCall(w, result, err)
}

func (s *Server) handleGetBid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, err := s.engine.GetBid(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "bid not found", "")
			return
		}
		respondError(w, http.StatusInternalServerError, "query failed", err.Error())
		return
	}
	respondJSON(w, order)
}

func (s *Server) handleCancelBid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.CancelBid(exchange.MsgInfo{Sender: sender, Funds: req.Funds}, id)
	s.respondCall(w, result, err)
}

func (s *Server) handleExecuteMatch(w http.ResponseWriter, r *http.Request) {
	var req ExecuteMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	sender, ok := parseAddress(w, req.Sender)
	if !ok {
		return
	}
	result, err := s.engine.ExecuteMatch(exchange.MsgInfo{Sender: sender, Funds: req.Funds}, req.AskID, req.BidID)
	s.respondCall(w, result, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

// respondCall renders an engine result, mapping engine errors to HTTP
// statuses, and broadcasts the call's attributes to the event stream.
func (s *Server) respondCall(w http.ResponseWriter, result *exchange.Result, err error) {
	if err != nil {
		respondError(w, statusForError(err), err.Error(), "")
		return
	}

	infos := make([]InstructionInfo, len(result.Instructions))
	for i, in := range result.Instructions {
		infos[i] = instructionInfo(in)
	}
	resp := CallResponse{
		Instructions: infos,
		Attributes:   result.Attributes,
		Data:         result.Data,
	}

	s.hub.Broadcast(result.Attributes)
	respondJSON(w, resp)
}

func statusForError(err error) int {
	var missingField *exchange.MissingFieldError
	var invalidFee *exchange.InvalidFeeError
	var invalidScopeOwner *exchange.InvalidScopeOwnerError
	switch {
	case errors.Is(err, exchange.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, exchange.ErrAskBidMismatch),
		errors.Is(err, exchange.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &missingField),
		errors.As(err, &invalidFee),
		errors.As(err, &invalidScopeOwner),
		errors.Is(err, exchange.ErrMissingAskBase),
		errors.Is(err, exchange.ErrMissingBidQuote),
		errors.Is(err, exchange.ErrScopeAskBaseWithFunds),
		errors.Is(err, exchange.ErrCancelWithFunds),
		errors.Is(err, exchange.ErrExecuteWithFunds),
		errors.Is(err, exchange.ErrUpdateFeesWithFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parseAddress(w http.ResponseWriter, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		respondError(w, http.StatusBadRequest, "invalid sender address", s)
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Detail: detail})
}
