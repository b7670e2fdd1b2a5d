package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/cascade/pkg/contrib/langcsv"
	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
	"github.com/ravi-parthasarathy/cascade/pkg/pipeline/registry"
	"github.com/ravi-parthasarathy/cascade/pkg/project"
	"github.com/ravi-parthasarathy/cascade/pkg/project/srcload"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprint(os.Stderr, renderError(err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cascade",
		Short: "Cascade — plugin pipeline runner",
		Long: `Cascade executes plugin pipelines against a shared project context.

Plugins are named by dotted paths ("contrib.langcsv", "src.deploy:Setup"),
run exactly once each, and may suspend after their setup phase so that
teardown runs only after everything they required has completed.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(checkCmd())
	return root
}

// ─── run ──────────────────────────────────────────────────────────────────────

func runCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
		graphDot  string
	)

	cmd := &cobra.Command{
		Use:   "run <project.yml>",
		Short: "Execute a project's plugin pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := initLogger(logLevel, logFormat); err != nil {
				return err
			}
			return executeRun(args[0], graphDot)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	cmd.Flags().StringVar(&graphDot, "graph-dot", "", "write the require graph as DOT after a successful run (optional)")
	return cmd
}

// executeRun loads the project file, wires sources and the context, and
// drives the pipeline to completion.
func executeRun(cfgPath, graphDot string) error {
	cfg, err := project.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	var trace pipeline.Trace
	opts := buildOptions(cfg)
	if graphDot != "" {
		opts = append(opts, pipeline.WithTrace[*project.Context](&trace))
	}

	c := project.New(cfg.Directory, opts...)
	c.MergeValues(cfg.Meta)

	runID := uuid.NewString()
	slog.Info("starting build", "project", cfg.Name, "run_id", runID, "plugins", len(cfg.Pipeline))

	if err := c.Run(toSpecs(cfg.Pipeline)...); err != nil {
		return err
	}
	slog.Info("build complete", "run_id", runID)

	if graphDot != "" {
		dot, err := renderDOT(cfg.Name, &trace)
		if err != nil {
			return fmt.Errorf("render require graph: %w", err)
		}
		if err := os.WriteFile(graphDot, []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write require graph: %w", err)
		}
		slog.Info("require graph written", "path", graphDot)
	}
	return nil
}

// ─── check ────────────────────────────────────────────────────────────────────

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <project.yml>",
		Short: "Resolve every configured plugin spec without executing",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := project.LoadConfig(args[0])
			if err != nil {
				return err
			}
			c := project.New(cfg.Directory, buildOptions(cfg)...)

			// Report every broken spec, not just the first.
			var failures []string
			for _, spec := range cfg.Pipeline {
				if _, err := c.Pipeline().Resolve(spec); err != nil {
					failures = append(failures, err.Error())
				}
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d specs failed to resolve:\n  %s",
					len(failures), len(cfg.Pipeline), strings.Join(failures, "\n  "))
			}
			fmt.Printf("OK: all %d specs resolve\n", len(cfg.Pipeline))
			return nil
		},
	}
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// buildOptions assembles the pipeline options for a project config: the
// symbol source chain (built-in contrib plugins, then source-file plugins
// when a plugins_dir is configured), the allow-list, and the default member.
func buildOptions(cfg *project.Config) []pipeline.Option[*project.Context] {
	reg := registry.New[*project.Context]()
	langcsv.Register(reg)

	chain := registry.Chain[*project.Context]{reg}
	if cfg.PluginsDir != "" {
		chain = append(chain, srcload.New(cfg.PluginsDir))
	}

	opts := []pipeline.Option[*project.Context]{
		pipeline.WithSource[*project.Context](chain),
	}
	if len(cfg.Allow) > 0 {
		opts = append(opts, pipeline.WithAllowList[*project.Context](cfg.Allow...))
	}
	if cfg.DefaultMember != "" {
		opts = append(opts, pipeline.WithDefaultMember[*project.Context](cfg.DefaultMember))
	}
	return opts
}

func toSpecs(names []string) []any {
	specs := make([]any, len(names))
	for i, name := range names {
		specs[i] = name
	}
	return specs
}

// renderError formats a pipeline failure for the terminal: the failure
// message first, then each cause on its own line.
func renderError(err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %v\n", errorMessage(err))
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(&sb, "  cause: %v\n", errorMessage(cause))
	}
	return sb.String()
}

// errorMessage returns err's own message without the repeated cause chain
// that Error() renders for the engine's failure types.
func errorMessage(err error) string {
	switch e := err.(type) {
	case *pipeline.PluginError:
		return fmt.Sprintf("plugin %s raised an error", e.Plugin)
	case *pipeline.ResolveError:
		return fmt.Sprintf("couldn't resolve plugin %q", e.Spec)
	default:
		return err.Error()
	}
}

// initLogger configures the default slog logger.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
