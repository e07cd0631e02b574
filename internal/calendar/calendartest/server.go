// Package calendartest provides an in-memory Google Calendar v3 backend for tests.
package calendartest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Operation names recorded by the server.
const (
	OpList   = "list"
	OpGet    = "get"
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

type failure struct {
	code    int
	message string
}

// Server is a fake Calendar API serving the events endpoints of every calendar
// from one shared event set.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	events   map[string]*gcal.Event
	nextID   int
	calls    map[string]int
	failures map[string]failure
	last     map[string]*gcal.Event
}

// NewServer starts a Server. It is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		events:   make(map[string]*gcal.Event),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		last:     make(map[string]*gcal.Event),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Factory returns a service factory whose services talk to this server.
// It is assignable to calendar.ServiceFactory.
func (s *Server) Factory() func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
	return func(ctx context.Context, token *oauth2.Token) (*gcal.Service, error) {
		if token == nil {
			return nil, fmt.Errorf("calendartest: nil token")
		}
		return gcal.NewService(ctx,
			option.WithHTTPClient(s.srv.Client()),
			option.WithEndpoint(s.srv.URL+"/"),
		)
	}
}

// Seed stores an event with title spanning [start, end) and returns its id.
func (s *Server) Seed(title string, start, end time.Time) string {
	return s.SeedEvent(&gcal.Event{
		Summary: title,
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	})
}

// SeedEvent stores a copy of e, assigning an id when it has none.
func (s *Server) SeedEvent(e *gcal.Event) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(e)
}

func (s *Server) store(e *gcal.Event) string {
	copied := *e
	if copied.Id == "" {
		s.nextID++
		copied.Id = "evt" + strconv.Itoa(s.nextID)
	}
	s.events[copied.Id] = &copied
	return copied.Id
}

// Event returns a copy of the stored event with id.
func (s *Server) Event(id string) (*gcal.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, false
	}
	copied := *e
	return &copied, true
}

// Len returns the number of stored events.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Calls returns how many requests for op were received.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// LastBody returns the last request body decoded for op (insert or update).
func (s *Server) LastBody(op string) *gcal.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[op]
}

// Fail makes every subsequent request for op fail with code and message.
func (s *Server) Fail(op string, code int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = failure{code: code, message: message}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	// Paths look like /calendars/{calendarId}/events[/{eventId}]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "calendars" || parts[2] != "events" {
		writeError(w, http.StatusNotFound, "unknown path "+r.URL.Path)
		return
	}
	var id string
	if len(parts) == 4 {
		id = parts[3]
	}

	op := operation(r.Method, id)
	if op == "" {
		writeError(w, http.StatusMethodNotAllowed, "unsupported method")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[op]++
	if f, ok := s.failures[op]; ok {
		writeError(w, f.code, f.message)
		return
	}

	switch op {
	case OpList:
		s.list(w, r)
	case OpGet:
		e, ok := s.events[id]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, e)
	case OpInsert:
		var e gcal.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.last[op] = &e
		e.Id = ""
		newID := s.store(&e)
		writeJSON(w, http.StatusOK, s.events[newID])
	case OpUpdate:
		if _, ok := s.events[id]; !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		var e gcal.Event
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.last[op] = &e
		e.Id = id
		s.store(&e)
		writeJSON(w, http.StatusOK, s.events[id])
	case OpDelete:
		if _, ok := s.events[id]; !ok {
			writeError(w, http.StatusGone, "Resource has been deleted")
			return
		}
		delete(s.events, id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func operation(method, id string) string {
	switch {
	case method == http.MethodGet && id == "":
		return OpList
	case method == http.MethodPost && id == "":
		return OpInsert
	case method == http.MethodGet:
		return OpGet
	case method == http.MethodPut:
		return OpUpdate
	case method == http.MethodDelete:
		return OpDelete
	}
	return ""
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var timeMin time.Time
	if v := q.Get("timeMin"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timeMin")
			return
		}
		timeMin = t
	}

	items := make([]*gcal.Event, 0, len(s.events))
	for _, e := range s.events {
		if !timeMin.IsZero() {
			// timeMin is an exclusive bound on the event's end
			if end, ok := parse(e.End); ok && !end.After(timeMin) {
				continue
			}
		}
		items = append(items, e)
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, aok := parse(items[i].Start)
		b, bok := parse(items[j].Start)
		if aok != bok {
			return aok
		}
		if !a.Equal(b) {
			return a.Before(b)
		}
		return items[i].Id < items[j].Id
	})

	if v := q.Get("maxResults"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(items) {
			items = items[:n]
		}
	}

	writeJSON(w, http.StatusOK, &gcal.Events{Kind: "calendar#events", Items: items})
}

func parse(dt *gcal.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, err == nil
	}
	if dt.Date != "" {
		t, err := time.Parse("2006-01-02", dt.Date)
		return t, err == nil
	}
	return time.Time{}, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"errors":  []map[string]string{{"message": message, "reason": "backendError"}},
		},
	})
}
