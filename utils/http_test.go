package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestServiceClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Header.Get("X-Service-Token") != "tok":
			http.Error(w, "forbidden", http.StatusForbidden)
		case r.URL.Path == "/api/v1/ping":
			_, _ = w.Write([]byte(`{"pong":"` + r.URL.Query().Get("q") + `"}`))
		default:
			_, _ = w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	client := NewServiceClient(srv.URL, "tok")
	var out struct {
		Pong string `json:"pong"`
	}
	if err := client.GetJSON(context.Background(), "/api/v1/ping", url.Values{"q": {"hi"}}, &out); err != nil {
		t.Fatal(err)
	}
	if out.Pong != "hi" {
		t.Errorf("pong = %q", out.Pong)
	}

	if err := client.GetJSON(context.Background(), "/garbage", nil, &out); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("garbage err = %v, want decode error", err)
	}

	bad := NewServiceClient(srv.URL, "wrong")
	if err := bad.GetJSON(context.Background(), "/api/v1/ping", nil, &out); err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("forbidden err = %v, want status 403", err)
	}
}
