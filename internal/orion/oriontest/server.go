// Package oriontest provides an in-memory entity store served over HTTP for tests.
package oriontest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
	"github.com/nerrad567/warehouse-core/internal/orion"
)

// Server is a fake entity store implementing the subset of the NGSI v2 API
// the client uses. Entities are kept in normalized form.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	entities map[string]orion.Entity
	calls    map[string]int
	failing  map[string]int // method -> status to answer with
	headers  []http.Header
}

// NewServer starts a fake store that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		entities: make(map[string]orion.Entity),
		calls:    make(map[string]int),
		failing:  make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Config returns an OrionConfig pointing at the fake store.
func (s *Server) Config() config.OrionConfig {
	return config.OrionConfig{
		URL:         s.URL,
		APIPrefix:   "/v2",
		Service:     "warehouse",
		ServicePath: "/",
		PageSize:    1000,
	}
}

// NewClient returns a client for the fake store.
func (s *Server) NewClient(t testing.TB) *orion.Client {
	t.Helper()
	c, err := orion.New(s.Config(), s.Server.Client())
	if err != nil {
		t.Fatalf("orion.New: %v", err)
	}
	return c
}

// Put stores an entity directly, bypassing HTTP.
func (s *Server) Put(e orion.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
}

// Remove deletes an entity directly.
func (s *Server) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entities, id)
}

// Entity returns a stored entity.
func (s *Server) Entity(id string) (orion.Entity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	return e, ok
}

// Count returns the number of stored entities of a type.
func (s *Server) Count(entityType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entities {
		if e.Type == entityType {
			n++
		}
	}
	return n
}

// Calls returns how many requests were made with the given method.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// FailMethod makes every request with method answer status until cleared with 0.
func (s *Server) FailMethod(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failing, method)
		return
	}
	s.failing[method] = status
}

// LastHeaders returns the headers of the most recent request.
func (s *Server) LastHeaders() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.headers) == 0 {
		return nil
	}
	return s.headers[len(s.headers)-1]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.calls[r.Method]++
	s.headers = append(s.headers, r.Header.Clone())
	status, failing := s.failing[r.Method]
	s.mu.Unlock()

	if failing {
		writeError(w, status, "Injected", "injected failure")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v2")
	switch {
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case path == "/types" && r.Method == http.MethodGet:
		s.listTypes(w)
	case path == "/entities" && r.Method == http.MethodGet:
		s.list(w, r)
	case path == "/entities" && r.Method == http.MethodPost:
		s.create(w, r)
	case strings.HasSuffix(path, "/attrs") && r.Method == http.MethodPatch:
		s.patch(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "/entities/"), "/attrs"))
	case strings.HasPrefix(path, "/entities/") && r.Method == http.MethodGet:
		s.get(w, r, strings.TrimPrefix(path, "/entities/"))
	case strings.HasPrefix(path, "/entities/") && r.Method == http.MethodDelete:
		s.delete(w, strings.TrimPrefix(path, "/entities/"))
	default:
		writeError(w, http.StatusBadRequest, "BadRequest", "unsupported route")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("type")
	keyValues := r.URL.Query().Get("options") == "keyValues"
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset")) //nolint:errcheck // zero default
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	matched := make([]orion.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if entityType == "" || e.Type == entityType {
			matched = append(matched, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[offset:end]

	if !keyValues {
		writeJSON(w, http.StatusOK, page)
		return
	}

	out := make([]map[string]any, 0, len(page))
	for _, e := range page {
		out = append(out, keyValuesOf(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	e, ok := s.entities[id]
	s.mu.Unlock()

	wantType := r.URL.Query().Get("type")
	if !ok || (wantType != "" && e.Type != wantType) {
		writeError(w, http.StatusNotFound, "NotFound", "The requested entity has not been found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var e orion.Entity
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "ParseError", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entities[e.ID]; exists {
		writeError(w, http.StatusUnprocessableEntity, "Unprocessable", "Already Exists")
		return
	}
	s.entities[e.ID] = e
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) patch(w http.ResponseWriter, r *http.Request, id string) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "ParseError", err.Error())
		return
	}
	if _, hasID := body["id"]; hasID {
		writeError(w, http.StatusBadRequest, "BadRequest", "id is not allowed in a patch")
		return
	}
	if _, hasType := body["type"]; hasType {
		writeError(w, http.StatusBadRequest, "BadRequest", "type is not allowed in a patch")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFound", "No context element found")
		return
	}
	for name, raw := range body {
		var v orion.AttributeValue
		if err := json.Unmarshal(raw, &v); err != nil {
			writeError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
		e = e.Set(name, v)
	}
	s.entities[id] = e
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) delete(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		writeError(w, http.StatusNotFound, "NotFound", "The requested entity has not been found")
		return
	}
	delete(s.entities, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTypes(w http.ResponseWriter) {
	s.mu.Lock()
	seen := make(map[string]struct{})
	for _, e := range s.entities {
		seen[e.Type] = struct{}{}
	}
	s.mu.Unlock()

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	writeJSON(w, http.StatusOK, types)
}

// keyValuesOf renders an entity in the simplified keyValues representation.
func keyValuesOf(e orion.Entity) map[string]any {
	out := map[string]any{"id": e.ID, "type": e.Type}
	for name, v := range e.Attrs {
		data, err := json.Marshal(v)
		if err != nil {
			continue
		}
		var env struct {
			Value any `json:"value"`
		}
		if json.Unmarshal(data, &env) == nil {
			out[name] = env.Value
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test server
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{"error": code, "description": description})
}
