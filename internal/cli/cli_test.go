package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/zoobzio/actionz/internal/demo"
	"github.com/zoobzio/actionz/internal/replay"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(&out, &errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestReplay_JSONLines(t *testing.T) {
	script := writeScript(t, "typing.yaml", `
kind: debounce
duration_ms: 100
events:
  - {at_ms: 0, type: input, value: c}
  - {at_ms: 30, type: input, value: ca}
  - {at_ms: 60, type: input, value: cat}
`)

	out, _, err := execute(t, "replay", script)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), out)
	}
	var rec replay.Record
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.AtMS != 160 || rec.Type != "emit" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestReplay_MsgpackToFile(t *testing.T) {
	script := writeScript(t, "pointer.json",
		`{"kind":"buffer-count","count":2,"events":[{"at_ms":0,"value":1},{"at_ms":1,"value":2},{"at_ms":2,"value":3}]}`)
	output := filepath.Join(t.TempDir(), "out.msgpack")

	if _, _, err := execute(t, "replay", script, "--format", "msgpack", "-o", output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var records []replay.Record
	if err := msgpack.Unmarshal(data, &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 full batch, got %d", len(records))
	}
}

func TestReplay_Errors(t *testing.T) {
	if _, _, err := execute(t, "replay"); err == nil {
		t.Error("expected missing argument to fail")
	}
	if _, _, err := execute(t, "replay", "/no/such/script.yaml"); err == nil {
		t.Error("expected missing file to fail")
	}
	if _, _, err := execute(t, "--log-level", "loud", "replay", writeScript(t, "s.yaml", "kind: debounce")); err == nil {
		t.Error("expected an unknown log level to fail")
	}
}

func TestLookup_AgainstDemoBackend(t *testing.T) {
	srv := httptest.NewServer(demo.New(demo.DefaultWords, nil).Handler())
	defer srv.Close()

	out, _, err := execute(t, "lookup",
		"--base-url", srv.URL+"/lookup",
		"--key", "q",
		"--debounce", "20ms",
		"--interval", "1ms",
		"--timeout", "5s",
		"cat", "fail")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var statuses []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var sl struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(line), &sl); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		statuses = append(statuses, sl.Status)
	}

	if len(statuses) < 4 {
		t.Fatalf("expected at least 4 statuses, got %v", statuses)
	}
	var terminals []string
	for _, s := range statuses {
		if s == "SUCCESS" || s == "ERROR" {
			terminals = append(terminals, s)
		}
	}
	if len(terminals) != 2 || terminals[0] != "SUCCESS" || terminals[1] != "ERROR" {
		t.Errorf("expected SUCCESS then ERROR, got %v", statuses)
	}
}

func TestLookup_RequiresBaseURL(t *testing.T) {
	if _, _, err := execute(t, "lookup", "cat"); err == nil {
		t.Error("expected missing --base-url to fail")
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, zap.NewNop(), ln, time.Second) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		cancel()
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected serve to return after cancel")
	}
}
