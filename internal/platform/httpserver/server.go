package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	authorization "tracechain/contexts/identity-access/authorization-service"
	authzerrors "tracechain/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "tracechain/contexts/identity-access/authorization-service/transport/http"
	traceservice "tracechain/contexts/provenance/trace-service"
	tracedomainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	tracehttp "tracechain/contexts/provenance/trace-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "tracechain/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	trace         traceservice.Module
	authorization authorization.Module
}

func New(
	trace traceservice.Module,
	authorizationModule authorization.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		trace:         trace,
		authorization: authorizationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/trace/v1/products", s.handleRegisterProduct)
	s.mux.HandleFunc("GET /api/trace/v1/products", s.handleListProducts)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}", s.handleGetProduct)
	s.mux.HandleFunc("POST /api/trace/v1/products/{product_id}/events", s.handleLogEvent)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}/events", s.handleGetEventHistory)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}/owner", s.handleGetCurrentOwner)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}/owners", s.handleGetOwnershipHistory)
	s.mux.HandleFunc("GET /api/trace/v1/products/{product_id}/verify", s.handleVerifyProduct)

	s.mux.HandleFunc("POST /api/authz/v1/accounts/grant", s.handleAuthzGrant)
	s.mux.HandleFunc("POST /api/authz/v1/accounts/revoke", s.handleAuthzRevoke)
	s.mux.HandleFunc("GET /api/authz/v1/accounts/{account_id}", s.handleAuthzCheck)
	s.mux.HandleFunc("GET /api/authz/v1/admin", s.handleAuthzGetAdmin)
}

func (s *Server) handleRegisterProduct(w http.ResponseWriter, r *http.Request) {
	accountID := resolveAccountID(r)
	if accountID == "" {
		writeTraceError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	var req tracehttp.RegisterProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTraceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.trace.Handler.RegisterProductHandler(
		r.Context(),
		accountID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleLogEvent(w http.ResponseWriter, r *http.Request) {
	accountID := resolveAccountID(r)
	if accountID == "" {
		writeTraceError(w, http.StatusUnauthorized, "missing_account", "X-Account-Id header is required")
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req tracehttp.LogEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTraceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.trace.Handler.LogEventHandler(r.Context(), accountID, productID, req)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.trace.Handler.GetProductHandler(r.Context(), productID)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEventHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.trace.Handler.GetEventHistoryHandler(r.Context(), productID)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCurrentOwner(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.trace.Handler.GetCurrentOwnerHandler(r.Context(), productID)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetOwnershipHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.trace.Handler.GetOwnershipHistoryHandler(r.Context(), productID)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVerifyProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}
	resp, err := s.trace.Handler.VerifyProductHandler(r.Context(), productID)
	if err != nil {
		writeTraceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	owner := strings.TrimSpace(query.Get("owner"))
	manufacturer := strings.TrimSpace(query.Get("manufacturer"))

	switch {
	case owner != "" && manufacturer != "":
		writeTraceError(w, http.StatusBadRequest, "invalid_filter", "owner and manufacturer filters are mutually exclusive")
	case owner != "":
		resp, err := s.trace.Handler.ListByOwnerHandler(r.Context(), owner)
		if err != nil {
			writeTraceDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	case manufacturer != "":
		resp, err := s.trace.Handler.ListByManufacturerHandler(r.Context(), manufacturer)
		if err != nil {
			writeTraceDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		writeTraceError(w, http.StatusBadRequest, "invalid_filter", "owner or manufacturer query parameter is required")
	}
}

func (s *Server) handleAuthzGrant(w http.ResponseWriter, r *http.Request) {
	accountID := resolveAccountID(r)
	var req authzhttp.GrantAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.GrantAccessHandler(r.Context(), accountID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzRevoke(w http.ResponseWriter, r *http.Request) {
	accountID := resolveAccountID(r)
	var req authzhttp.RevokeAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.RevokeAccessHandler(r.Context(), accountID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	resp, err := s.authorization.Handler.CheckAccessHandler(r.Context(), r.PathValue("account_id"))
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzGetAdmin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.authorization.Handler.GetAdminHandler(r.Context()))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := r.PathValue("product_id")
	productID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeTraceError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be an unsigned integer")
		return 0, false
	}
	return productID, true
}

func writeTraceDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracedomainerrors.ErrUnauthorized):
		writeTraceError(w, http.StatusForbidden, "unauthorized_account", err.Error())
	case errors.Is(err, tracedomainerrors.ErrProductNotFound):
		writeTraceError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, tracedomainerrors.ErrInvalidTransition):
		writeTraceError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, tracedomainerrors.ErrInvalidEventKind):
		writeTraceError(w, http.StatusUnprocessableEntity, "invalid_event_kind", err.Error())
	case errors.Is(err, tracedomainerrors.ErrInvalidMetadata):
		writeTraceError(w, http.StatusUnprocessableEntity, "invalid_metadata", err.Error())
	case errors.Is(err, tracedomainerrors.ErrInvalidAccountID):
		writeTraceError(w, http.StatusBadRequest, "invalid_account_id", err.Error())
	case errors.Is(err, tracedomainerrors.ErrProductExists):
		writeTraceError(w, http.StatusConflict, "product_exists", err.Error())
	case errors.Is(err, tracedomainerrors.ErrIdempotencyKeyRequired):
		writeTraceError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, tracedomainerrors.ErrIdempotencyKeyConflict):
		writeTraceError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	default:
		writeTraceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrAdminOnly):
		writeAuthzError(w, http.StatusForbidden, "admin_only", err.Error())
	case errors.Is(err, authzerrors.ErrInvalidAccountID):
		writeAuthzError(w, http.StatusBadRequest, "invalid_account_id", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTraceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tracehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveAccountID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Account-Id"))
}
