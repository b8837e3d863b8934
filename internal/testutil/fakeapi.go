package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"taskcollab/internal/task"
)

var fakeSigningKey = []byte("fakeapi-secret")

// RecordedRequest is one request seen by FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type fakeUser struct {
	ID       int64
	Username string
	Email    string
	Password string
}

// FakeAPI emulates the remote accounts and tasks API over HTTP.
// Access tokens are HS256 JWTs carrying a "username" claim.
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    []fakeUser
	access   map[string]string // token -> username
	refresh  map[string]string // token -> username
	tasks    map[int64]task.Task
	nextTask int64
	requests []RecordedRequest
	gate     chan struct{}

	failRefresh bool

	refreshCalls atomic.Int64
	unauthorized atomic.Int64
}

// NewFakeAPI starts a server. It is closed when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		tasks:    make(map[int64]task.Task),
		nextTask: 1,
	}

	r := mux.NewRouter()
	r.Use(f.record)

	accounts := r.PathPrefix("/accounts").Subrouter()
	accounts.HandleFunc("/register/", f.handleRegister).Methods(http.MethodPost)
	accounts.HandleFunc("/login/", f.handleLogin).Methods(http.MethodPost)
	accounts.HandleFunc("/login/refresh/", f.handleRefresh).Methods(http.MethodPost)

	tasks := r.PathPrefix("/tasks").Subrouter()
	tasks.Use(f.requireAuth)
	tasks.HandleFunc("/", f.handleListTasks).Methods(http.MethodGet)
	tasks.HandleFunc("/", f.handleCreateTask).Methods(http.MethodPost)
	tasks.HandleFunc("/{id:[0-9]+}/", f.handleGetTask).Methods(http.MethodGet)
	tasks.HandleFunc("/{id:[0-9]+}/", f.handleUpdateTask).Methods(http.MethodPut)
	tasks.HandleFunc("/{id:[0-9]+}/", f.handleDeleteTask).Methods(http.MethodDelete)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// AddUser registers an account directly.
func (f *FakeAPI) AddUser(username, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, fakeUser{
		ID:       int64(len(f.users) + 1),
		Username: username,
		Email:    email,
		Password: password,
	})
}

// HasUser reports whether an account with username exists.
func (f *FakeAPI) HasUser(username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.findUser(username)
	return ok
}

// IssueTokens mints an access/refresh pair for username without a login call.
func (f *FakeAPI) IssueTokens(username string) (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueAccess(username), f.issueRefresh(username)
}

// ExpireAccessTokens invalidates every access token issued so far.
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]string)
}

// RevokeRefreshTokens invalidates every refresh token issued so far.
func (f *FakeAPI) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = make(map[string]string)
}

// FailRefresh makes every refresh exchange return 401.
func (f *FakeAPI) FailRefresh(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRefresh = fail
}

// HoldRefresh blocks refresh exchanges until the returned func is called.
func (f *FakeAPI) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

// RefreshCalls returns how many refresh exchanges reached the server.
func (f *FakeAPI) RefreshCalls() int {
	return int(f.refreshCalls.Load())
}

// Unauthorized returns how many requests were rejected with 401.
func (f *FakeAPI) Unauthorized() int {
	return int(f.unauthorized.Load())
}

// Requests returns a copy of every request seen so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo returns the recorded requests for one method and path.
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// SeedTask stores t, assigning an ID and display labels.
func (f *FakeAPI) SeedTask(t task.Task) task.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.nextTask
	f.nextTask++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = task.At(time.Now().UTC())
	}
	t = withDisplay(t)
	f.tasks[t.ID] = t
	return t
}

// Task returns a stored task.
func (f *FakeAPI) Task(id int64) (task.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	return t, ok
}

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		_, valid := f.access[token]
		f.mu.Unlock()
		if !ok || !valid {
			f.unauthorized.Add(1)
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Given token not valid for any token type",
				"code":   "token_not_valid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed JSON"})
		return
	}

	var errs []map[string]string
	if body.Email == "" {
		errs = append(errs, fieldErr("email", "This field is required."))
	}
	if body.Username == "" {
		errs = append(errs, fieldErr("username", "This field is required."))
	}
	if len(body.Password) < 8 {
		errs = append(errs, fieldErr("password", "Ensure this field has at least 8 characters."))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.findUser(body.Username); taken && body.Username != "" {
		errs = append(errs, fieldErr("username", "A user with that username already exists."))
	}
	if _, taken := f.findUser(body.Email); taken && body.Email != "" {
		errs = append(errs, fieldErr("email", "A user with that email already exists."))
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": "Validation error", "errors": errs})
		return
	}

	u := fakeUser{ID: int64(len(f.users) + 1), Username: body.Username, Email: body.Email, Password: body.Password}
	f.users = append(f.users, u)
	writeJSON(w, http.StatusCreated, map[string]any{"id": u.ID, "username": u.Username, "email": u.Email})
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credential string `json:"credential"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed JSON"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.findUser(body.Credential)
	if !ok || u.Password != body.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"title":  "Authentication failed",
			"errors": []map[string]string{fieldErr("credential", "Invalid credentials.")},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access":  f.issueAccess(u.Username),
		"refresh": f.issueRefresh(u.Username),
		"user":    map[string]any{"id": u.ID, "username": u.Username, "email": u.Email},
	})
}

func (f *FakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.refreshCalls.Add(1)

	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var body struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()
	username, ok := f.refresh[body.Refresh]
	if f.failRefresh || !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": f.issueAccess(username)})
}

func (f *FakeAPI) handleListTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0, len(f.tasks))
	for id := range f.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.tasks[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := routeID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (f *FakeAPI) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	t := fromPayload(task.Task{}, p)
	t.ID = f.nextTask
	f.nextTask++
	t.CreatedAt = task.At(time.Now().UTC())
	f.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

func (f *FakeAPI) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := routeID(r)
	p, ok := decodePayload(w, r)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, found := f.tasks[id]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	t := fromPayload(existing, p)
	now := task.NewTimestamp(time.Now().UTC())
	t.UpdatedAt = now
	if t.Status == string(task.StatusCompleted) && existing.CompletedAt == nil {
		t.CompletedAt = now
	}
	f.tasks[id] = t
	writeJSON(w, http.StatusOK, t)
}

func (f *FakeAPI) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := routeID(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	delete(f.tasks, id)
	w.WriteHeader(http.StatusNoContent)
}

// findUser matches a username or an email. Caller holds f.mu.
func (f *FakeAPI) findUser(credential string) (fakeUser, bool) {
	for _, u := range f.users {
		if u.Username == credential || u.Email == credential {
			return u, true
		}
	}
	return fakeUser{}, false
}

func (f *FakeAPI) issueAccess(username string) string {
	tok := signToken("access", username)
	f.access[tok] = username
	return tok
}

func (f *FakeAPI) issueRefresh(username string) string {
	tok := signToken("refresh", username)
	f.refresh[tok] = username
	return tok
}

func signToken(kind, username string) string {
	claims := jwt.MapClaims{
		"token_type": kind,
		"username":   username,
		"jti":        uuid.NewString(),
		"exp":        time.Now().Add(5 * time.Minute).Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(fakeSigningKey)
	if err != nil {
		panic(fmt.Sprintf("sign fake token: %v", err))
	}
	return tok
}

func decodePayload(w http.ResponseWriter, r *http.Request) (task.Payload, bool) {
	var p task.Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed JSON"})
		return p, false
	}

	var errs []map[string]string
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, fieldErr("titulo", "This field may not be blank."))
	}
	if !p.Priority.Valid() {
		errs = append(errs, fieldErr("prioridade", fmt.Sprintf("%q is not a valid choice.", p.Priority)))
	}
	if !p.Status.Valid() {
		errs = append(errs, fieldErr("status", fmt.Sprintf("%q is not a valid choice.", p.Status)))
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"title": "Validation error", "errors": errs})
		return p, false
	}
	return p, true
}

func fromPayload(t task.Task, p task.Payload) task.Task {
	t.Title = p.Title
	t.Description = p.Description
	t.Priority = string(p.Priority)
	t.Status = string(p.Status)
	t.Deadline = p.Deadline
	t.User = p.User
	return withDisplay(t)
}

func withDisplay(t task.Task) task.Task {
	if p, err := task.ParsePriority(t.Priority); err == nil {
		t.PriorityDisplay = p.Label()
	}
	if s, err := task.ParseStatus(t.Status); err == nil {
		t.StatusDisplay = s.Label()
	}
	return t
}

func routeID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func fieldErr(field, message string) map[string]string {
	return map[string]string{"field": field, "message": message}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
