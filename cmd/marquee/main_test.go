package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const issues = `{"id":"1","type":"error","culprit":"app.js","metadata":{"type":"TypeError","value":"x is undefined"}}
{"id":"2","type":"csp","metadata":{"directive":"script-src","uri":"https://cdn.example.com","message":"Blocked script"}}
this line is not a record
{"id":"3","culprit":"merged"}
`

// runCmd executes the root command with args and returns what it printed.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"MARQUEE_OUTPUT", "MARQUEE_VERBOSITY", "MARQUEE_FEATURES", "MARQUEE_DEDUP_WINDOW", "MARQUEE_WEBHOOK_URL", "MARQUEE_OUTPUT_FILE"} {
		t.Setenv(key, "")
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		events = append(events, m)
	}
	return events
}

func TestResolveCommand(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)

	out, err := runCmd(t, "resolve", path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	events := decodeLines(t, out)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d:\n%s", len(events), out)
	}
	want := []struct{ kind, title, subtitle, message string }{
		{"group", "TypeError", "app.js", "x is undefined"},
		{"group", "script-src", "https://cdn.example.com", "Blocked script"},
		{"tombstone", "", "", "merged"},
	}
	for i, w := range want {
		e := events[i]
		if e["kind"] != w.kind || e["title"] != w.title || e["subtitle"] != w.subtitle || e["message"] != w.message {
			t.Errorf("event %d = %v, want %+v", i, e, w)
		}
	}
}

func TestResolveStrict(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)

	_, err := runCmd(t, "resolve", "--strict", path)
	if err == nil || !strings.Contains(err.Error(), "1 record") {
		t.Fatalf("expected strict failure for the bad line, got %v", err)
	}
}

func TestResolveLimitAndText(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)

	out, err := runCmd(t, "resolve", "-o", "text", "-n", "1", path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := strings.TrimSpace(out); got != "group 1  TypeError  app.js" {
		t.Fatalf("unexpected text output %q", got)
	}
}

func TestResolveDedup(t *testing.T) {
	line := `{"id":"9","type":"default","metadata":{"title":"Hello"}}` + "\n"
	path := writeTemp(t, "dupes.ndjson", strings.Repeat(line, 3))

	out, err := runCmd(t, "resolve", "--dedup", "1m", path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	events := decodeLines(t, out)
	if len(events) != 1 || events[0]["count"] != float64(3) {
		t.Fatalf("expected one event with count 3, got %v", events)
	}
}

func TestResolveOutputFile(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)
	outFile := filepath.Join(t.TempDir(), "resolved.ndjson")

	if _, err := runCmd(t, "resolve", "--output-file", outFile, path); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(decodeLines(t, string(data))); got != 3 {
		t.Fatalf("expected 3 lines in output file, got %d", got)
	}
}

func TestResolveInvalidFlags(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)

	if _, err := runCmd(t, "resolve", "--verbosity", "loud", path); err == nil {
		t.Fatal("expected validation error for verbosity")
	}
	if _, err := runCmd(t, "resolve", "--dedup", "soon", path); err == nil {
		t.Fatal("expected error for bad dedup window")
	}
	if _, err := runCmd(t, "resolve", filepath.Join(t.TempDir(), "missing.ndjson")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveConfigFile(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)
	cfg := writeTemp(t, "marquee.yaml", "output:\n  encoding: yaml\n")

	out, err := runCmd(t, "resolve", "--config", cfg, path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "title: TypeError") {
		t.Fatalf("expected YAML output, got:\n%s", out)
	}
}

func TestWatchWithoutFollow(t *testing.T) {
	path := writeTemp(t, "issues.ndjson", issues)

	out, err := runCmd(t, "watch", "--follow=false", path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if got := len(decodeLines(t, out)); got != 3 {
		t.Fatalf("expected 3 events, got %d", got)
	}
}

const crumbs = `[
  {"type":"default","category":"console","level":"error","message":"Payment failed"},
  {"type":"default","category":"console","level":"info","data":{"arguments":["cart <id>",42]}},
  {"type":"default","category":"issue","level":"error","message":"TypeError"},
  {"type":"http","category":"fetch","level":"error","message":"GET /api"}
]`

func TestCrumbsCommand(t *testing.T) {
	path := writeTemp(t, "crumbs.json", crumbs)

	out, err := runCmd(t, "crumbs", path, "--level", "error")
	if err != nil {
		t.Fatalf("crumbs: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got) != 1 || got[0]["message"] != "Payment failed" {
		t.Fatalf("unexpected crumbs %v", got)
	}
}

func TestCrumbsSearchText(t *testing.T) {
	path := writeTemp(t, "crumbs.json", crumbs)

	out, err := runCmd(t, "crumbs", path, "--search", "CART <ID>", "-o", "text")
	if err != nil {
		t.Fatalf("crumbs: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "info") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestCrumbsOptions(t *testing.T) {
	path := writeTemp(t, "crumbs.yaml", "- {type: default, level: warning}\n- {type: default, category: issue, level: error}\n")

	out, err := runCmd(t, "crumbs", path, "--options", "--level", "fatal")
	if err != nil {
		t.Fatalf("crumbs: %v", err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "fatal,issue,warning" {
		t.Fatalf("unexpected options %v", got)
	}
}

func TestCrumbsEmptyResult(t *testing.T) {
	path := writeTemp(t, "crumbs.json", crumbs)

	out, err := runCmd(t, "crumbs", path, "--search", "nothing matches this")
	if err != nil {
		t.Fatalf("crumbs: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty array, got %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("MARQUEE_VERBOSITY", "invalid")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version should ignore config, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "marquee ") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}
