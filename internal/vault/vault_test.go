package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseRef(t *testing.T) {
	path, key, err := ParseRef(" secret/agenda/db#password ")
	if err != nil || path != "secret/agenda/db" || key != "password" {
		t.Fatalf("ParseRef = %q %q %v", path, key, err)
	}
	for _, bad := range []string{"", "secret/agenda", "#password", "secret#password", "secret/agenda#"} {
		if _, _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q) accepted", bad)
		}
	}
}

const kvBody = `{
  "data": {
    "data": {"password": "s3cret", "port": 3306},
    "metadata": {"created_time": "2026-10-01T00:00:00Z", "custom_metadata": null,
                 "deletion_time": "", "destroyed": false, "version": 1}
  }
}`

func TestResolveReadsKVv2AndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/agenda/db" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Vault-Token") != "test-token" {
			http.Error(w, `{"errors":["permission denied"]}`, http.StatusForbidden)
			return
		}
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(kvBody))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Options{
		Address:  srv.URL,
		Token:    "test-token",
		CacheTTL: time.Minute,
		Log:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for range 2 {
		got, err := c.Resolve(context.Background(), "secret/agenda/db#password")
		if err != nil || got != "s3cret" {
			t.Fatalf("Resolve = %q, %v", got, err)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("cache miss: %d server hits", hits.Load())
	}

	if _, err := c.Resolve(context.Background(), "secret/agenda/db#user"); err == nil {
		t.Error("missing key resolved")
	}
	if _, err := c.Resolve(context.Background(), "secret/agenda/db#port"); err == nil {
		t.Error("non-string value resolved")
	}
}
