package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCheckConnection(t *testing.T) {
	t.Run("Connected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodHead {
				t.Errorf("expected HEAD, got %s", r.Method)
			}
			w.Header().Set("Content-Type", "video/mp2t")
		}))
		defer server.Close()

		info := CheckConnection(context.Background(), server.URL, time.Second)
		if info.Status != "connected" || info.Code != http.StatusOK {
			t.Errorf("unexpected conn info: %+v", info)
		}
		if info.ContentType != "video/mp2t" {
			t.Errorf("content type not captured: %q", info.ContentType)
		}
		if info.LatencyMS < 0 {
			t.Errorf("negative latency: %f", info.LatencyMS)
		}
	})

	t.Run("Failed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		info := CheckConnection(context.Background(), server.URL, time.Second)
		if info.Status != "failed" || info.Code != http.StatusForbidden {
			t.Errorf("unexpected conn info: %+v", info)
		}
	})

	t.Run("Unreachable", func(t *testing.T) {
		info := CheckConnection(context.Background(), "http://127.0.0.1:1/", time.Second)
		if info.Status != "error" {
			t.Errorf("expected error status, got %q", info.Status)
		}
	})
}
