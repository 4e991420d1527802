// Package apiserver implements assemble-as-a-service (spec.md §10.3): a
// stdlib net/http.ServeMux exposing POST /api/v1/assemble, grounded on the
// teacher's api.Server/registerRoutes/writeJSON shape. Unlike the
// teacher's server, there is no session state to manage — every request
// builds and tears down its own independent pass chain (spec.md §5).
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/qyon/r32asm/internal/asmerr"
	"github.com/qyon/r32asm/internal/checker"
	"github.com/qyon/r32asm/internal/encoder"
	"github.com/qyon/r32asm/internal/lexer"
	"github.com/qyon/r32asm/internal/parser"
	"github.com/qyon/r32asm/internal/resolver"
)

// Server is the HTTP front end over the assembler pipeline.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	addr   string
}

// NewServer creates a Server listening on addr once Start is called.
func NewServer(addr string) *Server {
	s := &Server{mux: http.NewServeMux(), addr: addr}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler, exposed separately from Start so tests
// can exercise routes with httptest without binding a real listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/assemble", s.handleAssemble)
}

// Start runs the server until it errors or Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("r32asm API server starting on http://%s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

type assembleRequest struct {
	Source string `json:"source"`
}

type assembleResponse struct {
	Words []string `json:"words"`
}

type errorResponse struct {
	Error struct {
		Kind    string `json:"kind"`
		Line    int    `json:"line"`
		Column  int    `json:"column"`
		Message string `json:"message"`
	} `json:"error"`
}

// handleAssemble runs a fresh lexer→parser→checker→resolver→encoder chain
// over the request body's source field and returns the encoded words, or
// a 422 describing the first diagnostic.
func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req assembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("malformed request body: %v", err), http.StatusBadRequest)
		return
	}

	words, err := assemble(req.Source)
	if err != nil {
		writeDiagnostic(w, err)
		return
	}

	resp := assembleResponse{Words: make([]string, len(words))}
	for i, word := range words {
		resp.Words[i] = fmt.Sprintf("%#08x", word)
	}
	writeJSON(w, http.StatusOK, resp)
}

func assemble(source string) ([]uint32, error) {
	prog, err := parser.New(lexer.New(source)).Parse()
	if err != nil {
		return nil, err
	}
	if err := checker.Check(prog); err != nil {
		return nil, err
	}
	result, err := resolver.Resolve(prog)
	if err != nil {
		return nil, err
	}
	return encoder.Encode(result.Instructions), nil
}

func writeDiagnostic(w http.ResponseWriter, err error) {
	resp := errorResponse{}
	if d, ok := err.(*asmerr.Diagnostic); ok {
		resp.Error.Kind = d.Kind.String()
		resp.Error.Line = d.Line
		resp.Error.Column = d.Column
		resp.Error.Message = d.Message
	} else {
		resp.Error.Message = err.Error()
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("apiserver: failed to write response: %v", err)
	}
}
