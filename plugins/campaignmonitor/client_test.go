package campaignmonitor

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBasicAuthHeader(t *testing.T) {
	tests := []struct {
		key      string
		expected string
	}{
		{"abc", "Basic " + base64.StdEncoding.EncodeToString([]byte("abc:"))},
		{"abc", "Basic YWJjOg=="},
		{"", "Basic Og=="},
		{"küçük", "Basic " + base64.StdEncoding.EncodeToString([]byte("küçük:"))},
	}

	for _, tt := range tests {
		if got := BasicAuthHeader(tt.key); got != tt.expected {
			t.Errorf("BasicAuthHeader(%q) = %q, want %q", tt.key, got, tt.expected)
		}
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 5 * time.Second, RateBurst: 1})
}

func TestClientDo_Headers(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true}`)
	})

	resp, err := client.Do(context.Background(), "abc", Request{
		Method:  http.MethodGet,
		Path:    "/subscribers/list-1.json",
		Query:   url.Values{"email": {"a@example.com"}},
		Headers: map[string]string{"X-Trace": "1", "Authorization": "ignored"},
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if m, ok := resp.(map[string]any); !ok || m["ok"] != true {
		t.Errorf("Do() = %v, want {ok: true}", resp)
	}
	if got.URL.Path != "/subscribers/list-1.json" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if got.URL.Query().Get("email") != "a@example.com" {
		t.Errorf("email query = %q", got.URL.Query().Get("email"))
	}
	if got.Header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", got.Header.Get("Accept"))
	}
	if got.Header.Get("Authorization") != "Basic YWJjOg==" {
		t.Errorf("Authorization = %q, extra headers must not override it", got.Header.Get("Authorization"))
	}
	if got.Header.Get("X-Trace") != "1" {
		t.Errorf("X-Trace = %q", got.Header.Get("X-Trace"))
	}
}

func TestClientDo_EmptyBodyOmitted(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantBody string
	}{
		{name: "nil", body: nil},
		{name: "empty map", body: map[string]any{}},
		{name: "empty slice", body: []any{}},
		{name: "empty struct", body: struct{}{}},
		{name: "empty string", body: ""},
		{name: "object", body: map[string]any{"SendDate": "Immediately"}, wantBody: `{"SendDate":"Immediately"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var contentType string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ = io.ReadAll(r.Body)
				contentType = r.Header.Get("Content-Type")
				w.WriteHeader(http.StatusOK)
			})

			if _, err := client.Do(context.Background(), "abc", Request{
				Method: http.MethodPost,
				Path:   "/campaigns/c1/send.json",
				Body:   tt.body,
			}); err != nil {
				t.Fatalf("Do() error = %v", err)
			}

			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantBody == "" && contentType != "" {
				t.Errorf("Content-Type = %q for an omitted body", contentType)
			}
		})
	}
}

func TestClientDo_EmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Do(context.Background(), "abc", Request{Method: http.MethodDelete, Path: "/campaigns/c1.json"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp != nil {
		t.Errorf("Do() = %v, want nil", resp)
	}
}

func TestClientDo_Errors(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		req        Request
		wantStatus int
		wantCode   int
		wantMsg    string
	}{
		{
			name: "api error body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"Code":1,"Message":"Invalid Email Address"}`)
			},
			req:        Request{Method: http.MethodPost, Path: "/subscribers/l.json"},
			wantStatus: http.StatusBadRequest,
			wantCode:   1,
			wantMsg:    "Invalid Email Address",
		},
		{
			name: "status without body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			req:        Request{Method: http.MethodGet, Path: "/clients.json"},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Unauthorized",
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "not json")
			},
			req:        Request{Method: http.MethodGet, Path: "/clients.json"},
			wantStatus: http.StatusOK,
			wantMsg:    "malformed JSON response",
		},
		{
			name:    "relative endpoint",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			req:     Request{Method: http.MethodGet, Path: "clients.json"},
			wantMsg: "endpoint must start with /",
		},
		{
			name:    "unsupported method",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			req:     Request{Method: http.MethodPatch, Path: "/clients.json"},
			wantMsg: "unsupported HTTP method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.Do(context.Background(), "abc", tt.req)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Do() error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", apiErr.Code, tt.wantCode)
			}
			if !strings.Contains(apiErr.Message, tt.wantMsg) {
				t.Errorf("Message = %q, want it to contain %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClientDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	_, err := client.Do(context.Background(), "abc", Request{Method: http.MethodGet, Path: "/clients.json"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Do() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", apiErr.StatusCode)
	}
}

func TestClientDo_CanceledContext(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Do(ctx, "abc", Request{Method: http.MethodGet, Path: "/clients.json"}); err == nil {
		t.Fatal("Do() with a canceled context succeeded")
	}
	if calls != 0 {
		t.Errorf("server saw %d requests, want 0", calls)
	}
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		base     string
		expected string
	}{
		{"", DefaultBaseURL},
		{"https://example.test/api/", "https://example.test/api"},
		{"https://example.test/api", "https://example.test/api"},
	}

	for _, tt := range tests {
		client := NewClient(Config{BaseURL: tt.base})
		if client.http.BaseURL != tt.expected {
			t.Errorf("NewClient(%q) base = %q, want %q", tt.base, client.http.BaseURL, tt.expected)
		}
	}
}
