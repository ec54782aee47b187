package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/marcelocantos/donegate/internal/checks"
	"github.com/marcelocantos/donegate/internal/gate"
	"github.com/marcelocantos/donegate/internal/gatefile"
)

// Exit codes.
const (
	ExitPass    = 0 // the task may be claimed complete
	ExitBlocked = 1 // at least one check failed
	ExitError   = 2 // bad usage, unreadable gate file, malformed checks
)

// Env bundles what every gate command needs.
type Env struct {
	Runner  *gate.Runner
	Library *checks.Library
	Out     io.Writer
	Err     io.Writer
	JSON    bool
}

// RunGate loads a gate file and enforces it. task overrides the file's task.
func RunGate(e *Env, path, task string) int {
	f, err := gatefile.Load(path)
	if err != nil {
		fmt.Fprintf(e.Err, "donegate run: %v\n", err)
		return ExitError
	}
	cs, err := f.Compile(e.Library)
	if err != nil {
		fmt.Fprintf(e.Err, "donegate run: %v\n", err)
		return ExitError
	}
	if task == "" {
		task = f.Task
	}
	return enforce(e, task, cs)
}

// VerifyOptions are the ad-hoc checks accepted by the verify command.
type VerifyOptions struct {
	Files      []string
	Executable []string
	Logs       []string // path:max_age_minutes
	Builds     []string
	Heartbeats []string // path:interval_minutes
	PidFiles   []string
	URLs       []string
}

// RunVerify enforces checks assembled from command-line flags.
func RunVerify(e *Env, task string, opts VerifyOptions) int {
	cs, err := opts.checks(e.Library)
	if err != nil {
		fmt.Fprintf(e.Err, "donegate verify: %v\n", err)
		return ExitError
	}
	if len(cs) == 0 {
		fmt.Fprintln(e.Err, "donegate verify: no checks given")
		return ExitError
	}
	return enforce(e, task, cs)
}

func (o VerifyOptions) checks(lib *checks.Library) ([]gate.Check, error) {
	var cs []gate.Check
	if len(o.Files) > 0 {
		cs = append(cs, gate.Named("files_exist", lib.FilesExist(o.Files...)))
	}
	if len(o.Executable) > 0 {
		cs = append(cs, gate.Named("scripts_executable", lib.ScriptsExecutable(o.Executable...)))
	}
	for _, spec := range o.Logs {
		path, minutes, err := splitMinutes(spec)
		if err != nil {
			return nil, fmt.Errorf("--log %s: %w", spec, err)
		}
		cs = append(cs, gate.Named("log_recent:"+path, lib.LogRecent(path, minutes)))
	}
	for _, dir := range o.Builds {
		cs = append(cs, gate.Named("build_artifact:"+dir, lib.BuildArtifactPresent(dir)))
	}
	for _, spec := range o.Heartbeats {
		path, minutes, err := splitMinutes(spec)
		if err != nil {
			return nil, fmt.Errorf("--heartbeat %s: %w", spec, err)
		}
		cs = append(cs, gate.Named("heartbeat:"+path, lib.HeartbeatFresh(path, minutes)))
	}
	for _, pf := range o.PidFiles {
		cs = append(cs, gate.Named("process_alive:"+pf, lib.ProcessAlive(pf)))
	}
	for _, u := range o.URLs {
		cs = append(cs, gate.Named("http:"+u, lib.EndpointResponds(u, 0, nil)))
	}
	return cs, nil
}

// splitMinutes parses "path:minutes".
func splitMinutes(spec string) (string, time.Duration, error) {
	i := strings.LastIndex(spec, ":")
	if i <= 0 || i == len(spec)-1 {
		return "", 0, fmt.Errorf("want path:minutes")
	}
	n, err := strconv.Atoi(spec[i+1:])
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("minutes must be a positive integer")
	}
	return spec[:i], time.Duration(n) * time.Minute, nil
}

func enforce(e *Env, task string, cs []gate.Check) int {
	d, err := e.Runner.Enforce(task, cs)
	if err != nil {
		fmt.Fprintf(e.Err, "donegate: %v\n", err)
		return ExitError
	}

	if e.JSON {
		data, _ := json.MarshalIndent(d, "", "  ")
		fmt.Fprintf(e.Out, "%s\n", data)
	} else {
		renderDecision(e.Out, d)
	}

	if !d.CanClaim {
		return ExitBlocked
	}
	return ExitPass
}
