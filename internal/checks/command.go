// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/gate"
)

// DefaultTimeout bounds command and endpoint checks when none is given.
const DefaultTimeout = 60 * time.Second

// CommandFunc builds the command for CommandSucceeds. Tests substitute it.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CommandSucceeds passes iff argv runs and exits with status 0 within
// timeout. A non-zero exit is a failure; failing to start is an error.
func (l *Library) CommandSucceeds(argv []string, timeout time.Duration, cmdFn CommandFunc) gate.Predicate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cmdFn == nil {
		cmdFn = exec.CommandContext
	}
	return func() (bool, error) {
		if len(argv) == 0 {
			return false, gate.WithCategory("exec", errors.New("empty command"))
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cmd := cmdFn(ctx, argv[0], argv[1:]...)
		err := cmd.Run()
		if ctx.Err() == context.DeadlineExceeded {
			return false, fmt.Errorf("command timed out after %v: %w", timeout, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			l.log.Log(audit.LevelError, fmt.Sprintf("COMMAND FAILED: %s exited %d", argv[0], exitErr.ExitCode()))
			return false, nil
		}
		if err != nil {
			return false, gate.WithCategory("exec", err)
		}
		l.log.Log(audit.LevelOK, "COMMAND OK: "+strings.Join(argv, " "))
		return true, nil
	}
}

// EndpointResponds passes iff a GET of url returns a 2xx or 3xx status
// within timeout. Transport failures are errors.
func (l *Library) EndpointResponds(url string, timeout time.Duration, client *http.Client) gate.Predicate {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	return func() (bool, error) {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, gate.WithCategory("http", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, gate.WithCategory("http", err)
		}
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			l.log.Log(audit.LevelError, fmt.Sprintf("ENDPOINT DOWN: %s returned %d", url, resp.StatusCode))
			return false, nil
		}
		l.log.Log(audit.LevelOK, "ENDPOINT OK: "+url)
		return true, nil
	}
}
