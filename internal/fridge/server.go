package fridge

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
)

// Server handles HTTP requests for the fridge API
type Server struct {
	service   *Service
	suggester Suggester
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, suggester Suggester, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, suggester, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, suggester Suggester, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		suggester: suggester,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="fridge-tracker"`)
			corsError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	// Health stays outside auth so load balancers can probe it
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("POST /api/users/{user}/receipts", s.requireAuth(s.handleScanReceipt))
	s.mux.HandleFunc("GET /api/users/{user}/fridge", s.requireAuth(s.handleGetFridge))
	s.mux.HandleFunc("DELETE /api/users/{user}/fridge", s.requireAuth(s.handleClearFridge))
	s.mux.HandleFunc("POST /api/users/{user}/fridge/items", s.requireAuth(s.handleAddItem))
	s.mux.HandleFunc("DELETE /api/users/{user}/fridge/items/{name}", s.requireAuth(s.handleRemoveItem))
	s.mux.HandleFunc("POST /api/users/{user}/cook", s.requireAuth(s.handleCook))
	s.mux.HandleFunc("GET /api/users/{user}/history", s.requireAuth(s.handleHistory))
	s.mux.HandleFunc("GET /api/users/{user}/suggestions", s.requireAuth(s.handleSuggestions))
}

// ServeHTTP implements http.Handler. The CORS middleware sits outside
// the mux so preflight OPTIONS requests short-circuit before method
// matching can reject them.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux.ServeHTTP)(w, r)
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "addr", addr)
	return http.ListenAndServe(addr, s)
}
