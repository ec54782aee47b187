package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/donegate/internal/audit"
	"github.com/marcelocantos/donegate/internal/checks"
	"github.com/marcelocantos/donegate/internal/cli"
	"github.com/marcelocantos/donegate/internal/config"
	"github.com/marcelocantos/donegate/internal/gate"
	"github.com/marcelocantos/donegate/internal/metrics"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	var (
		configPath string
		asJSON     bool
		verbose    bool
		exitCode   int
		cfg        *config.Config
	)

	loadConfig := func() error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		return err
	}

	// setup loads config and wires the runner. Metrics are flushed by the
	// returned func.
	setup := func() (*cli.Env, func(), error) {
		if err := loadConfig(); err != nil {
			return nil, nil, err
		}

		var detail audit.Sink = audit.Discard
		if cfg.Checks.LogDetails {
			detail = audit.NewLogger(cfg.Audit.DetailPath)
		}
		if verbose {
			detail = audit.Tee(detail, audit.NewEcho(os.Stderr, nil))
		}
		lib := checks.New(
			checks.WithLogger(detail),
			checks.WithHeartbeatTolerance(cfg.Checks.HeartbeatTolerance),
		)

		var opts []gate.Option
		flush := func() {}
		if cfg.Metrics.TextfilePath != "" {
			collector := metrics.New(cfg.Metrics.Namespace, func() float64 {
				return float64(time.Now().UnixNano()) / 1e9
			})
			opts = append(opts, gate.WithObserver(collector))
			flush = func() {
				if err := collector.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
					slog.Warn("metrics export failed", "err", err)
				}
			}
		}

		return &cli.Env{
			Runner:  gate.NewRunner(audit.NewLogger(cfg.Audit.Path), opts...),
			Library: lib,
			Out:     os.Stdout,
			Err:     os.Stderr,
			JSON:    asJSON,
		}, flush, nil
	}

	root := &cobra.Command{
		Use:           "donegate",
		Short:         "Block completion claims until verification checks pass",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "emit JSON")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo per-check detail records to stderr")

	var task string
	runCmd := &cobra.Command{
		Use:   "run <gate-file>",
		Short: "Enforce the checks defined in a gate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, flush, err := setup()
			if err != nil {
				return err
			}
			defer flush()
			exitCode = cli.RunGate(env, args[0], task)
			return nil
		},
	}
	runCmd.Flags().StringVar(&task, "task", "", "task name (overrides the gate file)")

	var vo cli.VerifyOptions
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Enforce checks given as flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, flush, err := setup()
			if err != nil {
				return err
			}
			defer flush()
			exitCode = cli.RunVerify(env, task, vo)
			return nil
		},
	}
	vf := verifyCmd.Flags()
	vf.StringVar(&task, "task", "", "task name for the audit log")
	vf.StringArrayVar(&vo.Files, "files", nil, "path that must exist (repeatable)")
	vf.StringArrayVar(&vo.Executable, "executable", nil, "script that must be executable (repeatable)")
	vf.StringArrayVar(&vo.Logs, "log", nil, "path:minutes, log modified within minutes")
	vf.StringArrayVar(&vo.Builds, "build", nil, "build output directory that must exist")
	vf.StringArrayVar(&vo.Heartbeats, "heartbeat", nil, "path:minutes, heartbeat with expected interval")
	vf.StringArrayVar(&vo.PidFiles, "pidfile", nil, "pid file of a process that must be running")
	vf.StringArrayVar(&vo.URLs, "http", nil, "URL that must answer GET with 2xx/3xx")

	auditCmd := &cobra.Command{
		Use:   "audit <tail [n]|summary>",
		Short: "Inspect the audit log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			exitCode = cli.RunAudit(os.Stdout, cfg.Audit.Path, args, asJSON)
			return nil
		},
	}

	kindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List check kinds usable in gate files",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = cli.RunKinds(os.Stdout)
		},
	}

	helpAgentCmd := &cobra.Command{
		Use:   "help-agent",
		Short: "Show the usage guide for agents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitCode = cli.RunHelpAgent(os.Stdout)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("donegate %s\n", version)
		},
	}

	root.AddCommand(runCmd, verifyCmd, auditCmd, kindsCmd, helpAgentCmd, versionCmd)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "donegate: %v\n", err)
		return cli.ExitError
	}
	return exitCode
}
