package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/checks"
	"github.com/marcelocantos/donegate/internal/gate"
)

func newEnv(t *testing.T, logPath string) (*Env, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	return &Env{
		Runner:  gate.NewRunner(audit.NewLogger(logPath)),
		Library: checks.New(),
		Out:     &out,
		Err:     &errOut,
	}, &out, &errOut
}

func TestRunVerifyExitCodes(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gate.log")
	present := filepath.Join(dir, "exists.txt")
	if err := os.WriteFile(present, nil, 0600); err != nil {
		t.Fatal(err)
	}

	e, out, _ := newEnv(t, logPath)
	if code := RunVerify(e, "pass", VerifyOptions{Files: []string{present}, Builds: []string{dir}}); code != ExitPass {
		t.Fatalf("exit = %d, want %d; output:\n%s", code, ExitPass, out)
	}
	if !strings.Contains(out.String(), "GATE PASSED") {
		t.Errorf("missing pass banner:\n%s", out)
	}

	e, out, _ = newEnv(t, logPath)
	code := RunVerify(e, "block", VerifyOptions{Files: []string{present, filepath.Join(dir, "missing.txt")}})
	if code != ExitBlocked {
		t.Fatalf("exit = %d, want %d", code, ExitBlocked)
	}
	if !strings.Contains(out.String(), "files_exist") {
		t.Errorf("failed check not reported:\n%s", out)
	}

	s, err := audit.Summarize(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if s.Counts[audit.LevelPass] != 1 || s.Counts[audit.LevelBlock] != 1 {
		t.Errorf("audit counts = %v", s.Counts)
	}
}

func TestRunVerifyBadFlags(t *testing.T) {
	e, _, errOut := newEnv(t, filepath.Join(t.TempDir(), "gate.log"))
	if code := RunVerify(e, "x", VerifyOptions{Logs: []string{"app.log"}}); code != ExitError {
		t.Errorf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(errOut.String(), "want path:minutes") {
		t.Errorf("stderr = %q", errOut)
	}
	if code := RunVerify(e, "x", VerifyOptions{}); code != ExitError {
		t.Errorf("empty verify should be a usage error, got %d", code)
	}
}

func TestRunGateJSON(t *testing.T) {
	dir := t.TempDir()
	gf := filepath.Join(dir, "gate.yaml")
	content := "task: from file\nchecks:\n  - {name: built, kind: build_artifact, path: " + dir + "}\n"
	if err := os.WriteFile(gf, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	e, out, _ := newEnv(t, filepath.Join(dir, "gate.log"))
	e.JSON = true
	if code := RunGate(e, gf, ""); code != ExitPass {
		t.Fatalf("exit = %d", code)
	}

	var d gate.Decision
	if err := json.Unmarshal(out.Bytes(), &d); err != nil {
		t.Fatalf("output is not a decision: %v\n%s", err, out)
	}
	if d.Task != "from file" || !d.CanClaim || len(d.Results) != 1 {
		t.Errorf("unexpected decision: %+v", d)
	}
}

func TestRunGateMissingFile(t *testing.T) {
	e, _, errOut := newEnv(t, filepath.Join(t.TempDir(), "gate.log"))
	if code := RunGate(e, "/nonexistent/gate.yaml", ""); code != ExitError {
		t.Errorf("exit = %d, want %d", code, ExitError)
	}
	if errOut.Len() == 0 {
		t.Error("expected an error message")
	}
}

func TestSplitMinutes(t *testing.T) {
	path, d, err := splitMinutes("/var/log/app.log:15")
	if err != nil || path != "/var/log/app.log" || d.Minutes() != 15 {
		t.Errorf("got (%q, %v, %v)", path, d, err)
	}
	for _, bad := range []string{"nocolon", ":15", "path:", "path:0", "path:x"} {
		if _, _, err := splitMinutes(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestRunAudit(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "gate.log")
	logger := audit.NewLogger(logPath)
	logger.Log(audit.LevelEnforce, "GATE ENFORCING: x")
	logger.Log(audit.LevelPass, "GATE PASSED: x - OK TO CLAIM DONE")

	var out bytes.Buffer
	if code := RunAudit(&out, logPath, []string{"tail", "1"}, false); code != ExitPass {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out.String(), "PASS - GATE PASSED") || strings.Contains(out.String(), "ENFORCING") {
		t.Errorf("tail output:\n%s", out.String())
	}

	out.Reset()
	if code := RunAudit(&out, logPath, []string{"summary"}, false); code != ExitPass {
		t.Fatalf("exit = %d", code)
	}
	if !strings.Contains(out.String(), "2 entries") {
		t.Errorf("summary output:\n%s", out.String())
	}

	out.Reset()
	if code := RunAudit(&out, logPath, []string{"bogus"}, false); code != ExitError {
		t.Errorf("exit = %d, want %d", code, ExitError)
	}
}

func TestRunKinds(t *testing.T) {
	var out bytes.Buffer
	RunKinds(&out)
	for _, k := range []string{"files_exist", "heartbeat", "starlark"} {
		if !strings.Contains(out.String(), k) {
			t.Errorf("kind %q missing from:\n%s", k, out.String())
		}
	}
}
