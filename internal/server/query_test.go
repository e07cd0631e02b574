package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/teemow/schedai/internal/agent"
)

func postQuery(t *testing.T, h http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/schedule/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQueryHandler_Success(t *testing.T) {
	q := &fakeQuerier{reply: "Event 'Lunch' created successfully."}
	h := NewQueryHandler(newTestContext(t, q), time.Minute, nil)

	rec := postQuery(t, h, `{"query":"lunch tomorrow at noon"}`, map[string]string{AccountHeader: "work"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var resp QueryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != q.reply {
		t.Errorf("response = %q, want %q", resp.Response, q.reply)
	}
	if len(q.accounts) != 1 || q.accounts[0] != "work" {
		t.Errorf("accounts = %v, want [work]", q.accounts)
	}
	if q.queries[0] != "lunch tomorrow at noon" {
		t.Errorf("query = %q", q.queries[0])
	}
}

func TestQueryHandler_DefaultAccount(t *testing.T) {
	q := &fakeQuerier{reply: "No upcoming events found."}
	h := NewQueryHandler(newTestContext(t, q), 0, nil)

	rec := postQuery(t, h, `{"query":"what is on my calendar"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if q.accounts[0] != "default" {
		t.Errorf("account = %q, want default", q.accounts[0])
	}
}

func TestQueryHandler_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		headers map[string]string
		err     error
		status  int
		calls   int
	}{
		{"malformed body", `{"query":`, nil, nil, http.StatusBadRequest, 0},
		{"blank query", `{"query":"   "}`, nil, nil, http.StatusBadRequest, 0},
		{"missing query", `{}`, nil, nil, http.StatusBadRequest, 0},
		{"invalid account", `{"query":"hi"}`, map[string]string{AccountHeader: "../etc"}, nil, http.StatusBadRequest, 0},
		{"empty query from agent", `{"query":"hi"}`, nil, agent.ErrEmptyQuery, http.StatusBadRequest, 1},
		{"agent failure", `{"query":"hi"}`, nil, errors.New("model unavailable"), http.StatusBadGateway, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQuerier{err: tt.err}
			h := NewQueryHandler(newTestContext(t, q), 0, nil)

			rec := postQuery(t, h, tt.body, tt.headers)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if len(q.queries) != tt.calls {
				t.Errorf("querier called %d times, want %d", len(q.queries), tt.calls)
			}
			if strings.Contains(rec.Body.String(), "model unavailable") {
				t.Error("internal error leaked to the client")
			}
		})
	}
}
