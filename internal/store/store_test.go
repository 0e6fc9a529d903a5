package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/meltforce/setlog/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("loading default catalog: %v", err)
	}
	return c
}

func testGateway(t *testing.T) *Gateway {
	t.Helper()
	dir := t.TempDir()
	gw, err := NewGateway(
		filepath.Join(dir, "workout_data.json"),
		filepath.Join(dir, "workout_history.json"),
		testLogger(),
	)
	if err != nil {
		t.Fatalf("creating gateway: %v", err)
	}
	return gw
}

// testGatewayAt builds a gateway with explicit paths, for failure-injection
// tests.
func testGatewayAt(t *testing.T, sessionPath, historyPath string) *Gateway {
	t.Helper()
	gw, err := NewGateway(sessionPath, historyPath, testLogger())
	if err != nil {
		t.Fatalf("creating gateway: %v", err)
	}
	return gw
}
