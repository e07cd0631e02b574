package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teemow/schedai/internal/agent"
	"github.com/teemow/schedai/internal/google"
	"github.com/teemow/schedai/internal/logging"
)

// maxQueryBody caps the size of a query request body.
const maxQueryBody = 64 << 10

// QueryRequest is the body of POST /schedule/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the reply of POST /schedule/query.
type QueryResponse struct {
	Response string `json:"response"`
}

// QueryHandler answers natural-language scheduling requests.
type QueryHandler struct {
	sc      *ServerContext
	timeout time.Duration
	logger  *slog.Logger
}

// NewQueryHandler creates the query handler. A positive timeout bounds every
// agent run.
func NewQueryHandler(sc *ServerContext, timeout time.Duration, logger *slog.Logger) *QueryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryHandler{
		sc:      sc,
		timeout: timeout,
		logger:  logging.WithOperation(logger, "schedule.query"),
	}
}

func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	account, err := h.sc.AccountForRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account: "+err.Error())
		return
	}

	var req QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	ctx := google.ContextWithAccount(r.Context(), account)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reply, err := h.sc.Querier().Query(ctx, req.Query)
	switch {
	case errors.Is(err, agent.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("query failed", logging.AccountHash(account), logging.Err(err))
		writeError(w, http.StatusBadGateway, "the assistant could not complete the request")
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Response: reply})
}
