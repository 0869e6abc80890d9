package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/ipc"
	"github.com/1broseidon/cardwm/internal/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	socketPath string
	verbose    bool
}

func (o *globalOptions) client() *ipc.Client {
	if o.socketPath != "" {
		return ipc.NewClientAt(o.socketPath)
	}
	return ipc.NewClient()
}

// load returns the effective config and the path it was read from.
func (o *globalOptions) load() (*config.Config, string, error) {
	path := o.configPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, "", err
	}
	return res.Config, path, nil
}

func (o *globalOptions) logger(cfg config.LoggingConfig) *zap.Logger {
	if o.verbose {
		cfg.Level = "debug"
	}
	return logging.Must(cfg)
}

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "cardwm",
		Short: "Card window manager for touch shells",
		Long: `cardwm arranges application windows as cards grouped into fanned stacks.

The daemon owns the card state; the other commands talk to it over a unix
socket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/cardwm/config.yaml)")
	root.PersistentFlags().StringVar(&opts.socketPath, "socket", "", "daemon socket path (default $XDG_RUNTIME_DIR/cardwm.sock)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newDaemonCmd(opts),
		newStatusCmd(opts),
		newGroupsCmd(opts),
		newFocusCmd(opts),
		newSwitchCmd(opts),
		newNavigateCmd(opts),
		newMaximizeCmd(opts),
		newMinimizeCmd(opts),
		newDismissModalCmd(opts),
		newLauncherCmd(opts),
		newReloadCmd(opts),
		newReplayCmd(opts),
		newConfigCmd(opts),
		newMCPCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
