// Package apitest runs an in-process fake of the aiwave HTTP API for tests.
//
// The fake implements POST /auth/login, POST /auth/register and
// GET /auth/user with the same bodies and status codes as the real backend.
// Passwords are kept as bcrypt hashes and login tokens are HS256 JWTs
// carrying the account email.
package apitest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/aiwave/aiwave/pkg/domain"
)

// Request is one call the fake received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
}

type account struct {
	user domain.User
	hash []byte
}

// Server is a fake aiwave API backed by httptest.
type Server struct {
	srv    *httptest.Server
	secret []byte

	mu         sync.Mutex
	accounts   map[string]*account // by email
	issued     map[string]string   // token -> email, for fixed tokens
	nextID     int64
	fixedToken string
	userStatus int
	requests   []Request
}

// Option configures a Server.
type Option func(*Server)

// WithFixedToken makes every successful login return token instead of a JWT.
func WithFixedToken(token string) Option {
	return func(s *Server) { s.fixedToken = token }
}

// WithSecret sets the JWT signing key.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// NewServer starts a fake API. It is closed by t.Cleanup when tb is non-nil.
func NewServer(tb interface{ Cleanup(func()) }, opts ...Option) *Server {
	s := &Server{
		secret:   []byte("test-secret"),
		accounts: make(map[string]*account),
		issued:   make(map[string]string),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("GET /auth/user", s.handleUser)
	s.srv = httptest.NewServer(s.record(mux))
	if tb != nil {
		tb.Cleanup(s.Close)
	}
	return s
}

// URL is the base URL to hand to client.New.
func (s *Server) URL() string { return s.srv.URL }

// Close shuts the server down.
func (s *Server) Close() { s.srv.Close() }

// AddUser registers an account directly and returns its record.
func (s *Server) AddUser(username, email, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(username, email, password)
}

func (s *Server) addLocked(username, email, password string) domain.User {
	// MinCost keeps tests fast; the hash only has to round-trip.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic("apitest: hash password: " + err.Error())
	}
	u := domain.User{ID: s.nextID, Username: username, Email: email}
	s.nextID++
	s.accounts[email] = &account{user: u, hash: hash}
	return u
}

// FailUserWith makes GET /auth/user answer status until reset with 0.
func (s *Server) FailUserWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userStatus = status
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request to path.
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

// IssueToken signs a token for email the way login does.
func (s *Server) IssueToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required!")
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[in.Email]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(in.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}

	token := s.fixedToken
	if token == "" {
		var err error
		if token, err = s.IssueToken(in.Email); err != nil {
			writeMessage(w, http.StatusInternalServerError, "could not sign token")
			return
		}
	}
	s.mu.Lock()
	s.issued[token] = in.Email
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, domain.LoginResponse{Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required!")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[in.Email]; exists {
		writeMessage(w, http.StatusBadRequest, "User already exists!")
		return
	}
	s.addLocked(in.Username, in.Email, in.Password)
	writeMessage(w, http.StatusCreated, "User registered successfully!")
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := s.userStatus
	s.mu.Unlock()
	if status != 0 {
		writeMessage(w, status, http.StatusText(status))
		return
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		writeMessage(w, http.StatusUnauthorized, "Token is missing!")
		return
	}
	email, err := s.emailFor(token)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Token is invalid!")
		return
	}

	s.mu.Lock()
	acct, found := s.accounts[email]
	s.mu.Unlock()
	if !found {
		writeMessage(w, http.StatusUnauthorized, "User not found!")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

var errUnknownToken = errors.New("unknown token")

func (s *Server) emailFor(token string) (string, error) {
	s.mu.Lock()
	email, ok := s.issued[token]
	s.mu.Unlock()
	if ok {
		return email, nil
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errUnknownToken
	}
	email, _ = claims["email"].(string)
	if email == "" {
		return "", errUnknownToken
	}
	return email, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // test fake
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
