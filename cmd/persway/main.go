package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/persway/persway/internal/config"
	"github.com/persway/persway/internal/engine"
	"github.com/persway/persway/internal/hooks"
	"github.com/persway/persway/internal/ipc"
	"github.com/persway/persway/internal/layout"
	"github.com/persway/persway/internal/lifecycle"
	"github.com/persway/persway/internal/util"
)

var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		exitErr(err)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persway",
		Short: "I am Persway. A friendly daemon.",
		Long: `I am Persway. A friendly daemon.

I talk to the Sway Compositor and persuade it to do little evil things.
Give me an option and see what it brings.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, raw, path, err := resolveConfig(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, path, raw)
		},
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "path to YAML config (default $XDG_CONFIG_HOME/persway/config.yaml)")
	f.BoolP("autolayout", "a", false, "enable autolayout, alternating between horizontal and vertical splits")
	f.BoolP("workspace-renaming", "w", false, "rename workspaces after the application running in them")
	f.StringP("on-window-focus", "f", "", "command run when a window gains focus, e.g. '[tiling] opacity 0.8; opacity 1'")
	f.StringP("on-window-focus-leave", "l", "", "command run against the window that lost focus, e.g. 'mark --add _prev'")
	f.StringP("on-exit", "e", "", "command run when persway exits, e.g. '[tiling] opacity 1'")
	f.String("socket", "", "sway IPC socket (default $SWAYSOCK)")
	f.String("log-level", "", "log level (trace|debug|info|warn|error)")
	f.Bool("dry-run", false, "log commands instead of sending them")
	return cmd
}

// resolveConfig loads the config file and overlays explicitly set flags.
func resolveConfig(f *pflag.FlagSet) (*config.Config, []byte, string, error) {
	path, _ := f.GetString("config")
	required := path != ""
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, raw, err := config.Load(path, required)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load config: %w", err)
	}

	if f.Changed("autolayout") {
		cfg.Autolayout, _ = f.GetBool("autolayout")
	}
	if f.Changed("workspace-renaming") {
		cfg.WorkspaceRenaming, _ = f.GetBool("workspace-renaming")
	}
	if f.Changed("on-window-focus") {
		cfg.Hooks.OnWindowFocus, _ = f.GetString("on-window-focus")
	}
	if f.Changed("on-window-focus-leave") {
		cfg.Hooks.OnWindowFocusLeave, _ = f.GetString("on-window-focus-leave")
	}
	if f.Changed("on-exit") {
		cfg.Hooks.OnExit, _ = f.GetString("on-exit")
	}
	if f.Changed("socket") {
		cfg.Socket, _ = f.GetString("socket")
	}
	if f.Changed("log-level") {
		cfg.LogLevel, _ = f.GetString("log-level")
	}
	if f.Changed("dry-run") {
		cfg.DryRun, _ = f.GetBool("dry-run")
	}
	if err := cfg.Finalize(); err != nil {
		return nil, nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, raw, path, nil
}

func run(ctx context.Context, cfg *config.Config, cfgPath string, raw []byte) error {
	logger := util.NewLogger(util.ParseLogLevel(cfg.LogLevel))

	socket, err := ipc.SocketPath(cfg.Socket)
	if err != nil {
		return fmt.Errorf("locate sway socket: %w", err)
	}

	sigs, stop := lifecycle.Notify()
	defer stop()
	coordinator := &lifecycle.Coordinator{
		Dial: func(ctx context.Context) (lifecycle.CommandConn, error) {
			if cfg.DryRun {
				return dryRunConn{ipc.DryRunCommander{Logger: logger}}, nil
			}
			conn, err := ipc.Dial(ctx, socket)
			if err != nil {
				return nil, err
			}
			return conn, nil
		},
		OnExit: cfg.Hooks.OnExit,
		Logger: logger,
	}
	go coordinator.Run(ctx, sigs)

	if raw != nil {
		watcher, err := config.NewWatcher(cfgPath, raw, logger)
		if err != nil {
			logger.Warnf("config changes will not be detected: %v", err)
		} else {
			go watcher.Run(ctx)
		}
	}

	commands, err := ipc.Dial(ctx, socket)
	if err != nil {
		return fmt.Errorf("open command connection: %w", err)
	}
	defer commands.Close()

	events, err := ipc.Subscribe(ctx, socket)
	if err != nil {
		return fmt.Errorf("subscribe to window events: %w", err)
	}
	defer events.Close()

	var commander layout.Commander = commands
	if cfg.DryRun {
		commander = ipc.DryRunCommander{Logger: logger}
	}
	eng := engine.New(commands, commander, logger, engine.Options{
		Autolayout:        cfg.Autolayout,
		WorkspaceRenaming: cfg.WorkspaceRenaming,
		Hooks: hooks.Templates{
			OnWindowFocus:      cfg.Hooks.OnWindowFocus,
			OnWindowFocusLeave: cfg.Hooks.OnWindowFocusLeave,
			OnExit:             cfg.Hooks.OnExit,
		},
	})
	logger.Infof("listening for window events on %s (autolayout=%t, workspace-renaming=%t, dry-run=%t)",
		socket, cfg.Autolayout, cfg.WorkspaceRenaming, cfg.DryRun)
	return eng.Run(ctx, events)
}

type dryRunConn struct {
	ipc.DryRunCommander
}

func (dryRunConn) Close() error { return nil }

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
