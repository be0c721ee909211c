package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_DoDecodesEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Not authorized"}`))
			return
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("json payload must carry content type, got %q", r.Header.Get("Content-Type"))
		}
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"name":"Mathematics"}}`))
	}))
	defer ts.Close()

	var out struct {
		Name string `json:"name"`
	}
	env, err := New(ts.URL+"/", "tok").Do(context.Background(), http.MethodPost, "/api/subjects", map[string]string{"name": "x"}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !env.Success || out.Name != "Mathematics" {
		t.Fatalf("unexpected result: %+v %+v", env, out)
	}

	_, err = New(ts.URL, "").Do(context.Background(), http.MethodPost, "/api/subjects", map[string]string{}, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Not authorized" {
		t.Fatalf("expected 401 api error, got %v", err)
	}
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, "").Do(context.Background(), http.MethodGet, "/health", nil, nil)
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Fatalf("unexpected error: %v", err)
	}
}
