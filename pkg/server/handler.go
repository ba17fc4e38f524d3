package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/invo/pkg/model"
	"github.com/m-mizutani/invo/pkg/usecase/chat"
	"github.com/m-mizutani/invo/pkg/utils/logging"
)

type handler struct {
	chat     ChatService
	invoices InvoiceService
}

type queryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

type queryResponse struct {
	Answer    string `json:"answer"`
	SessionID string `json:"session_id"`
}

type countResponse struct {
	TotalCount int `json:"total_count"`
}

type dateRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type dateRangeResponse struct {
	Count    int              `json:"count"`
	Invoices []*model.Invoice `json:"invoices"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "invoice query API is running",
	})
}

func (h *handler) query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = chat.DefaultSessionID
	}

	answer, err := h.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		logging.From(r.Context()).Error("query failed", "error", err, "session_id", req.SessionID)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		SessionID: req.SessionID,
	})
}

func (h *handler) count(w http.ResponseWriter, r *http.Request) {
	count, err := h.invoices.Count(r.Context())
	if err != nil {
		logging.From(r.Context()).Error("count failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, countResponse{TotalCount: count})
}

func (h *handler) dateRange(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	invoices, err := h.invoices.ByDateRange(r.Context(), req.StartDate, req.EndDate)
	if err != nil {
		// Malformed bounds are the caller's mistake, not a server failure
		var parseErr *time.ParseError
		status := http.StatusInternalServerError
		if errors.As(err, &parseErr) {
			status = http.StatusBadRequest
		}
		logging.From(r.Context()).Warn("date range lookup failed", "error", err)
		writeError(w, status, err.Error())
		return
	}

	if invoices == nil {
		invoices = []*model.Invoice{}
	}
	writeJSON(w, http.StatusOK, dateRangeResponse{
		Count:    len(invoices),
		Invoices: invoices,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
