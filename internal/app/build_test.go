package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/ent0n29/seminar/internal/config"
	"github.com/ent0n29/seminar/internal/ledger"
)

func TestBuildWithoutDatabase(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	cfg := config.Config{
		MetricsNamespace:        "test_app_build",
		ElevenLabsAgentID:       "agent_test",
		ElevenLabsSignedURLMode: "post",
		RoomNamePrefix:          "seminar",
	}

	res, err := Build(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			t.Fatalf("Cleanup() error = %v", err)
		}
	}()

	if ledger.Mode(res.Ledger) != "disabled" {
		t.Fatalf("ledger mode = %q, want disabled", ledger.Mode(res.Ledger))
	}
	if hook.LastEntry() == nil {
		t.Fatalf("expected a warning about missing credentials")
	}

	ts := httptest.NewServer(res.API.Router())
	defer ts.Close()
	r, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	r.Body.Close()
	if r.StatusCode != http.StatusOK {
		t.Fatalf("GET /healthz status = %d, want 200", r.StatusCode)
	}
}
