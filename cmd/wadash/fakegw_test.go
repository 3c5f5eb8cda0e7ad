package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/zulandar/wadash/internal/confirm"
)

// fakeGateway serves the gateway HTTP contract from memory and records
// every request as "METHOD /path".
type fakeGateway struct {
	mu        sync.Mutex
	requests  []string
	bodies    map[string][]byte
	instances []map[string]any
	chats     map[string][]map[string]any
	schedules []map[string]any
	connect   map[string]any
	failAll   bool
}

func newFakeGateway(t *testing.T) (*fakeGateway, *httptest.Server) {
	t.Helper()
	fg := &fakeGateway{
		bodies: make(map[string][]byte),
		chats:  make(map[string][]map[string]any),
	}
	srv := httptest.NewServer(http.HandlerFunc(fg.serve))
	t.Cleanup(srv.Close)
	return fg, srv
}

func (fg *fakeGateway) serve(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	_, _ = body.ReadFrom(r.Body)

	fg.mu.Lock()
	defer fg.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	fg.requests = append(fg.requests, key)
	fg.bodies[key] = body.Bytes()

	if fg.failAll {
		http.Error(w, "gateway unavailable", http.StatusInternalServerError)
		return
	}

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet && path == "/instance/fetchInstances":
		writeJSON(w, fg.instances)
	case r.Method == http.MethodPost && path == "/instance/create":
		var req struct {
			InstanceName string `json:"instanceName"`
		}
		_ = json.Unmarshal(body.Bytes(), &req)
		fg.instances = append(fg.instances, map[string]any{"instanceName": req.InstanceName, "status": "disconnected"})
		writeJSON(w, map[string]any{"instance": map[string]any{"instanceName": req.InstanceName}})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/instance/connect/"):
		writeJSON(w, fg.connect)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/instance/logout/"),
		r.Method == http.MethodDelete && strings.HasPrefix(path, "/instance/delete/"):
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/chat/findChats/"):
		writeJSON(w, fg.chats[strings.TrimPrefix(path, "/chat/findChats/")])
	case r.Method == http.MethodGet && path == "/schedule":
		writeJSON(w, fg.schedules)
	case r.Method == http.MethodPost && path == "/schedule":
		var req map[string]any
		_ = json.Unmarshal(body.Bytes(), &req)
		req["id"] = fmt.Sprintf("s%d", len(fg.schedules)+1)
		req["status"] = "pending"
		fg.schedules = append(fg.schedules, req)
		writeJSON(w, req)
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/schedule/"):
		w.WriteHeader(http.StatusOK)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// count returns how many recorded requests equal key.
func (fg *fakeGateway) count(key string) int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	n := 0
	for _, r := range fg.requests {
		if r == key {
			n++
		}
	}
	return n
}

func (fg *fakeGateway) total() int {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return len(fg.requests)
}

func (fg *fakeGateway) body(key string) []byte {
	fg.mu.Lock()
	defer fg.mu.Unlock()
	return fg.bodies[key]
}

// writeConfig writes a wadash.yaml pointing at baseURL plus extra YAML and
// returns its path.
func writeConfig(t *testing.T, baseURL, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wadash.yaml")
	yaml := fmt.Sprintf("gateway:\n  base_url: %s\n  api_key: test-key\nlog:\n  mode: production\n%s", baseURL, extra)
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCmd executes the root command with args and returns its output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// withPrompter replaces the terminal confirmer for the duration of a test.
func withPrompter(t *testing.T, answer bool) {
	t.Helper()
	orig := newPrompter
	newPrompter = func(*cobra.Command) confirm.Confirmer {
		if answer {
			return confirm.Always
		}
		return confirm.Never
	}
	t.Cleanup(func() { newPrompter = orig })
}
