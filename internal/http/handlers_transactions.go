package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// transactionRequest is the JSON body for creating or updating a
// transaction. Amount is a decimal string in whole units ("12.34"); Date is
// YYYY-MM-DD.
type transactionRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Icon        string `json:"icon"`
}

func (req transactionRequest) toTransaction(ownerID string) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
	}
	date, err := parseDateParam(req.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", errBadRequest, req.Date)
	}
	return core.Transaction{
		OwnerID:     ownerID,
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Amount:      core.Money{Cents: cents},
		CategoryRef: sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Date:        date,
		Icon:        strings.TrimSpace(req.Icon),
	}, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	tx, err := req.toTransaction(ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.transactions.Append(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, "transaction created", toTransactionView(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	tx, err := s.transactions.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "transaction", toTransactionView(tx))
}

// transactionUpdateRequest carries a partial update. Absent fields keep their
// stored value; the merged record is validated as a whole.
type transactionUpdateRequest struct {
	Type        *string `json:"type"`
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Icon        *string `json:"icon"`
}

func (req transactionUpdateRequest) applyTo(tx *core.Transaction) error {
	if req.Type != nil {
		tx.Type = core.TransactionType(strings.TrimSpace(*req.Type))
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
		}
		tx.Amount = core.Money{Cents: cents}
	}
	if req.Category != nil {
		tx.CategoryRef = sanitizeInput(*req.Category)
	}
	if req.Description != nil {
		tx.Description = sanitizeInput(*req.Description)
	}
	if req.Date != nil {
		date, err := parseDateParam(*req.Date)
		if err != nil {
			return fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", errBadRequest, *req.Date)
		}
		tx.Date = date
	}
	if req.Icon != nil {
		tx.Icon = strings.TrimSpace(*req.Icon)
	}
	return nil
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	var req transactionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	tx, err := s.transactions.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := req.applyTo(&tx); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.transactions.Update(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "transaction updated", toTransactionView(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	id, err := parsePathID(r)
	if err != nil {
		writeBadRequest(w, "invalid transaction id")
		return
	}

	if err := s.transactions.Remove(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "transaction deleted", nil)
}

func (s *Server) handleResetTransactions(w http.ResponseWriter, r *http.Request, ownerID string) {
	removed, err := s.transactions.Reset(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "all transactions deleted", map[string]int64{"removed": removed})
}

// handleListTransactions supports filtering by from/to (YYYY-MM-DD), type,
// category (numeric id), search (description substring), plus limit/offset
// pagination.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, ownerID string) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	txns, total, err := s.transactions.List(r.Context(), ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(txns))
	for _, tx := range txns {
		views = append(views, toTransactionView(tx))
	}

	writeJSON(w, http.StatusOK, "transactions", transactionListView{
		Transactions: views,
		Total:        total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, ownerID string) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	start, end := core.MonthRange(year, month)

	summary, err := s.reports.Summary(r.Context(), ownerID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "summary", toSummaryView(summary))
}

func parseTransactionFilter(r *http.Request) (storage.TransactionFilter, error) {
	var f storage.TransactionFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := parseDateParam(v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q: expected YYYY-MM-DD", v)
		}
		f.From = from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := parseDateParam(v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q: expected YYYY-MM-DD", v)
		}
		// The to date is inclusive in the API; storage ranges are [from, to).
		f.To = to.AddDate(0, 0, 1)
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if !typ.Valid() {
			return f, fmt.Errorf("invalid type %q: must be income or expense", v)
		}
		f.Type = typ
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid category id %q", v)
		}
		f.CategoryID = id
	}
	f.Search = sanitizeInput(q.Get("search"))

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return f, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = limit
	}
	if v := strings.TrimSpace(q.Get("offset")); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return f, fmt.Errorf("invalid offset %q", v)
		}
		f.Offset = offset
	}

	return f, nil
}
