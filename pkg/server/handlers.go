package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/compiler/lexer"
	"github.com/analizador-es/analizador/pkg/gallery"
	"github.com/analizador-es/analizador/pkg/history"
	"github.com/analizador-es/analizador/pkg/stats"
)

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Code string `json:"code"`
}

// AnalyzeResponse is a successful analysis. Result is a number, string or
// boolean, and null when the program produced no value.
type AnalyzeResponse struct {
	Result         any           `json:"result"`
	FilteredTokens []lexer.Token `json:"filteredTokens"`
}

// ErrorResponse is returned with a 4xx status. FilteredTokens is only set
// for a division by zero.
type ErrorResponse struct {
	Error          string        `json:"error"`
	Line           int           `json:"line,omitempty"`
	FilteredTokens []lexer.Token `json:"filteredTokens,omitempty"`
}

// ExampleSummary is one row of GET /api/examples.
type ExampleSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TokensResponse is the body of GET /api/examples/{id}/tokens.
type TokensResponse struct {
	Tokens    []lexer.Token `json:"tokens"`
	Frequency []stats.Entry `json:"frequency"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, ErrorResponse{Error: fmt.Sprintf(format, args...)})
}

// analyze runs one pipeline pass and returns the status and body to send.
func (s *Server) analyze(ctx context.Context, code string) (int, any) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	result, err := compiler.AnalyzeWithOptions(ctx, code, compiler.Options{
		MaxDepth: s.cfg.MaxDepth,
		Logger:   s.log,
	})
	elapsed := time.Since(start)

	s.record(ctx, history.NewEntry(code, result, err, elapsed))

	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var ae *compiler.AnalysisError
		if errors.As(err, &ae) {
			resp.Error = ae.Message
			resp.Line = ae.Line
			resp.FilteredTokens = ae.Tokens
		}
		s.log.Debug("Analysis failed", "request", RequestID(ctx), "error", err)
		return http.StatusBadRequest, resp
	}

	return http.StatusOK, AnalyzeResponse{
		Result:         result.Value.Native(),
		FilteredTokens: result.Tokens,
	}
}

func (s *Server) record(ctx context.Context, e history.Entry) {
	if s.history == nil {
		return
	}
	// The analysis deadline may already have passed.
	ctx = context.WithoutCancel(ctx)
	if _, err := s.history.Record(ctx, e); err != nil {
		s.log.Warn("Failed to record analysis", "request", RequestID(ctx), "error", err)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Cuerpo demasiado grande (máximo %d bytes)", tooLarge.Limit)
			return
		}
		writeError(w, http.StatusBadRequest, "JSON inválido: %v", err)
		return
	}

	status, body := s.analyze(r.Context(), req.Code)
	writeJSON(w, status, body)
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	list := make([]ExampleSummary, 0, s.gallery.Len())
	for _, ex := range s.gallery.List() {
		list = append(list, ExampleSummary{ID: ex.ID, Name: ex.Name})
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) example(w http.ResponseWriter, r *http.Request) (*gallery.Example, bool) {
	id := r.PathValue("id")
	ex, ok := s.gallery.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Ejemplo no encontrado: %s", id)
	}
	return ex, ok
}

func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	if ex, ok := s.example(w, r); ok {
		writeJSON(w, http.StatusOK, ex)
	}
}

func (s *Server) handleExampleTokens(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.example(w, r)
	if !ok {
		return
	}

	tokens := compiler.Tokenize(ex.Code)
	writeJSON(w, http.StatusOK, TokensResponse{
		Tokens:    tokens,
		Frequency: stats.Frequency(tokens),
	})
}

func (s *Server) handleExampleChart(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.example(w, r)
	if !ok {
		return
	}

	scale := 1
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 4 {
			writeError(w, http.StatusBadRequest, "Escala inválida: %s", v)
			return
		}
		scale = n
	}

	img := stats.Chart(stats.Frequency(compiler.Tokenize(ex.Code)),
		stats.WithTitle(ex.Name),
		stats.WithScale(scale))

	w.Header().Set("Content-Type", "image/png")
	if err := stats.Encode(w, img, stats.FormatPNG); err != nil {
		s.log.Error("Failed to encode chart", "request", RequestID(r.Context()), "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "Historial desactivado")
		return
	}

	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Límite inválido: %s", v)
			return
		}
		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error("Failed to read history", "request", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Error al leer el historial")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "Historial desactivado")
		return
	}

	id := r.PathValue("id")
	entry, err := s.history.Get(r.Context(), id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeError(w, http.StatusNotFound, "Entrada no encontrada: %s", id)
	case err != nil:
		s.log.Error("Failed to read history", "request", RequestID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "Error al leer el historial")
	default:
		writeJSON(w, http.StatusOK, entry)
	}
}
