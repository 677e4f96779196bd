package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vladislav-Dmitriev/well-net/internal/config"
	"github.com/Vladislav-Dmitriev/well-net/internal/logging"
	"github.com/Vladislav-Dmitriev/well-net/internal/metrics"
	"github.com/Vladislav-Dmitriev/well-net/internal/server"
	"github.com/Vladislav-Dmitriev/well-net/internal/store"
)

// errInvalid reports a rejected project after its report was printed.
var errInvalid = errors.New("project has validation errors")

// app carries the process settings shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log *zap.Logger
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:               "wellnet",
		Short:             "Reference monitoring-well network designer",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "process config file (YAML); WELLNET_* variables override it")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: json|console")

	rootCmd.AddCommand(designCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(costCmd(a))
	rootCmd.AddCommand(radiusCmd(a))
	rootCmd.AddCommand(firstRowCmd(a))
	rootCmd.AddCommand(sceneCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(runsCmd(a))
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", "text", "output format: text|json")
}

func checkFormat(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown output format %q; expected text or json", format)
	}
	return nil
}

func designCmd(a *app) *cobra.Command {
	var (
		opts    designOptions
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "design [project-path]",
		Short: "Design the monitoring network of every contour, horizon and radius coefficient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(opts.format); err != nil {
				return err
			}
			if !cmd.Flags().Changed("store") {
				opts.storePath = a.cfg.Store.Path
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.Engine.Workers
			}
			opts.tripleTimeout = a.cfg.Engine.TripleTimeout
			if cmd.Flags().Changed("triple-timeout") {
				opts.tripleTimeout = timeout
			}
			return runDesign(cmd.Context(), a, args[0], opts, cmd.OutOrStdout())
		},
	}
	addFormatFlag(cmd, &opts.format)
	cmd.Flags().StringVar(&opts.storePath, "store", "", "sqlite database to save the run in")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "triples designed concurrently (0 = GOMAXPROCS)")
	cmd.Flags().DurationVar(&timeout, "triple-timeout", 0, "time limit per triple (0 = none)")
	return cmd
}

func validateCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a project without designing the network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return runValidate(args[0], format, cmd.OutOrStdout())
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func costCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "cost [project-path]",
		Short: "Compute survey days and deferred production of the designed network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return runCost(cmd.Context(), a, args[0], format, cmd.OutOrStdout())
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func radiusCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "radius [project-path]",
		Short: "Estimate the mean first-row radius of every contour and horizon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return runRadius(cmd.Context(), a, args[0], format, cmd.OutOrStdout())
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func firstRowCmd(a *app) *cobra.Command {
	var format, horizon string
	cmd := &cobra.Command{
		Use:   "firstrow [project-path] [well]",
		Short: "Show the first-row wells and sectors around one well",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return runFirstRow(a, args[0], args[1], horizon, format, cmd.OutOrStdout())
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().StringVar(&horizon, "horizon", "", "horizon to look on (default: the well's first horizon)")
	return cmd
}

func sceneCmd(a *app) *cobra.Command {
	var (
		triple string
		format string
		svg    bool
	)
	cmd := &cobra.Command{
		Use:   "scene [project-path]",
		Short: "Export the 2D scene of one designed triple as JSON or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if svg {
				format = "svg"
			}
			if format != "json" && format != "svg" {
				return fmt.Errorf("unknown scene format %q; expected json or svg", format)
			}
			return runScene(cmd.Context(), a, args[0], triple, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&triple, "triple", "t", "", "triple as contour/horizon/coefficient (default: the first)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json|svg")
	cmd.Flags().BoolVar(&svg, "svg", false, "shorthand for --format svg")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var (
		port      int
		storePath string
	)
	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the HTTP API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("store") {
				cfg.Store.Path = storePath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			opts := server.Options{Config: cfg, Logger: a.log, Metrics: metrics.New(true)}
			if len(args) == 1 {
				opts.ProjectPath = args[0]
			}
			if cfg.Store.Path != "" {
				st, err := store.Open(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Store = st
			}
			return server.New(opts).Start(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultServerPort, "HTTP server port")
	cmd.Flags().StringVar(&storePath, "store", "", "sqlite database for persisted runs")
	return cmd
}

func runsCmd(a *app) *cobra.Command {
	var (
		storePath string
		format    string
		limit     int
	)
	open := func(cmd *cobra.Command) (*store.Store, error) {
		path := a.cfg.Store.Path
		if cmd.Flags().Changed("store") {
			path = storePath
		}
		if path == "" {
			return nil, errors.New("no run store configured; pass --store or set store.path")
		}
		return store.Open(path)
	}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored design runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return runListRuns(cmd.Context(), st, limit, format, cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().StringVar(&storePath, "store", "", "sqlite database of persisted runs")
	cmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text|json")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "most recent runs to list (0 = all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [run-id]",
		Short: "Show one stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return runShowRun(cmd.Context(), st, args[0], format, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "well [name]",
		Short: "List the stored triples that selected a well",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			return runWellHistory(cmd.Context(), st, args[0], format, cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete [run-id]",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	})
	return cmd
}
