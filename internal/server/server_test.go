package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanonone/stradadb/internal/facade"
	"github.com/sanonone/stradadb/internal/guidance"
	"github.com/sanonone/stradadb/pkg/engine"
)

func writeTestDataset(t *testing.T) map[string]string {
	t.Helper()
	secondary := guidance.NewRoadClassification(false, false, false, guidance.PrioritySecondary, 2).Pack()

	dataset := facade.Dataset{
		Coordinates: []facade.Coordinate{
			{Lat: 45.000, Lon: 7.600},
			{Lat: 45.001, Lon: 7.601},
			{Lat: 45.002, Lon: 7.602},
		},
		FirstOut: []facade.EdgeID{0, 1, 3, 4},
		Edges: []facade.DatasetEdge{
			{Target: 1, Weight: 10, Classification: secondary},
			{Target: 0, Weight: 10, Classification: secondary},
			{Target: 2, Weight: 10, Classification: secondary},
			{Target: 1, Weight: 10, Classification: secondary},
		},
		Timestamp: "test-build",
	}

	dir := t.TempDir()
	paths := map[string]string{
		facade.PathNodes:     filepath.Join(dir, "net.nodes"),
		facade.PathEdges:     filepath.Join(dir, "net.edges"),
		facade.PathTimestamp: filepath.Join(dir, "net.timestamp"),
	}
	if err := facade.SaveDataset(paths, dataset); err != nil {
		t.Fatal(err)
	}
	return paths
}

func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	eng, err := engine.New(engine.Options{Paths: writeTestDataset(t)})
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(eng, ":0")
	ts := httptest.NewServer(s.httpServer.Handler)
	return ts, func() {
		ts.Close()
		eng.Close()
	}
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("response %q is not JSON: %v", raw, err)
		}
	}
	return resp.StatusCode, body
}

func TestHTTPQueryEndpoints(t *testing.T) {
	ts, cleanup := newTestServer(t)
	defer cleanup()

	// 1. healthz answers outside the middleware chain
	status, body := getJSON(t, ts.URL+"/healthz")
	if status != 200 || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", status, body)
	}

	// 2. a known service goes through the dispatcher
	status, body = getJSON(t, ts.URL+"/timestamp")
	if status != 200 || body["timestamp"] != "test-build" {
		t.Errorf("timestamp = %d %v", status, body)
	}

	// 3. routing end to end
	status, body = getJSON(t, ts.URL+"/viaroute?loc=45.0,7.6&loc=45.002,7.602")
	if status != 200 {
		t.Fatalf("viaroute status = %d", status)
	}
	if body["status"] != float64(0) {
		t.Errorf("viaroute body = %v", body)
	}

	// 4. an unknown service becomes the stock bad request
	status, body = getJSON(t, ts.URL+"/definitely-not-a-service")
	if status != 400 || body["status_message"] != "Bad Request" {
		t.Errorf("unknown service = %d %v", status, body)
	}

	// 5. malformed loc parameters are rejected before dispatch
	status, _ = getJSON(t, ts.URL+"/viaroute?loc=garbage")
	if status != 400 {
		t.Errorf("malformed loc = %d, want 400", status)
	}
}

func TestParseRouteParameters(t *testing.T) {
	r := httptest.NewRequest("GET", "/viaroute?loc=45.0,7.6&loc=45.003,7.603&alt=true", nil)
	params, err := parseRouteParameters(r)
	if err != nil {
		t.Fatal(err)
	}
	if params.Service != "viaroute" || !params.Alternatives || len(params.Coordinates) != 2 {
		t.Errorf("params = %+v", params)
	}
	if params.Coordinates[1] != (facade.Coordinate{Lat: 45.003, Lon: 7.603}) {
		t.Errorf("second coordinate = %v", params.Coordinates[1])
	}

	for _, bad := range []string{"/x?loc=45.0", "/x?loc=91,0", "/x?loc=0,181", "/x?loc=a,b"} {
		r := httptest.NewRequest("GET", bad, nil)
		if _, err := parseRouteParameters(r); err == nil {
			t.Errorf("%s should fail to parse", bad)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stradadb.yaml")
	config := `
http_addr: ":6000"
dataset:
  nodes: /data/net.nodes
  edges: /data/net.edges
  timestamp: /data/net.timestamp
`
	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":6000" || cfg.Dataset.Nodes != "/data/net.nodes" {
		t.Errorf("config = %+v", cfg)
	}
	paths := cfg.Dataset.Paths()
	if paths[facade.PathEdges] != "/data/net.edges" {
		t.Errorf("paths = %v", paths)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	dir := t.TempDir()

	// shared memory without a snapshot path
	path := filepath.Join(dir, "bad1.yaml")
	os.WriteFile(path, []byte("dataset:\n  use_shared_memory: true\n"), 0644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("use_shared_memory without snapshot must fail")
	}

	// internal mode without the mandatory files
	path = filepath.Join(dir, "bad2.yaml")
	os.WriteFile(path, []byte("dataset:\n  nodes: only-nodes\n"), 0644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("missing edges path must fail")
	}
}
