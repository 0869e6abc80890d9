package daemon

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/cardwm/internal/card"
	"github.com/1broseidon/cardwm/internal/cardwm"
	"github.com/1broseidon/cardwm/internal/config"
	"github.com/1broseidon/cardwm/internal/ipc"
	"github.com/1broseidon/cardwm/internal/modal"
	"github.com/1broseidon/cardwm/internal/platform"
)

// Runner is an extra goroutine supervised with the daemon, such as the X11
// event pump or the hotkey listener.
type Runner func(ctx context.Context, d *Daemon) error

// Options configures a Daemon.
type Options struct {
	Config *config.Config
	// ConfigPath is re-read on RELOAD and watched when daemon.watch_config
	// is set. Empty means the default location.
	ConfigPath string
	SocketPath string
	Logger     *zap.Logger
	Host       platform.WindowHost
	Signals    cardwm.Signals
	// Index and ListWindows let the reconciler drop cards whose native
	// window vanished. Both are optional.
	Index       WindowIndex
	ListWindows WindowLister
	Runners     []Runner
}

// Daemon wires the manager, its event loop, the IPC server and the optional
// config watcher together.
type Daemon struct {
	configPath string
	log        *zap.Logger
	mgr        *cardwm.Manager
	loop       *Loop
	server     *ipc.Server
	watcher    *ConfigWatcher
	reconciler *Reconciler
	runners    []Runner
}

// New builds a daemon. Nothing runs until Run is called.
func New(opts Options) (*Daemon, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	path := opts.ConfigPath
	if path == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	d := &Daemon{
		configPath: path,
		log:        logger,
		runners:    opts.Runners,
	}
	d.mgr = cardwm.New(cardwm.Options{
		Config:  cfg,
		Host:    opts.Host,
		Logger:  logger.Named("cardwm"),
		Signals: d.withLogging(opts.Signals),
	})
	d.loop = NewLoop(d.mgr, LoopConfig{
		FrameInterval:    cfg.FrameInterval(),
		AddWindowTimeout: cfg.AddWindowTimeout(),
		QueueSize:        cfg.Daemon.QueueSize,
		Logger:           logger,
	})

	server, err := ipc.NewServer(opts.SocketPath, d.loop, d.Reload, logger)
	if err != nil {
		return nil, err
	}
	d.server = server

	if cfg.Daemon.WatchConfig {
		d.watcher = NewConfigWatcher(path, d.Reload, logger)
	}
	d.reconciler = NewReconciler(ReconcilerConfig{Logger: logger}, d.loop, opts.Index, opts.ListWindows)
	return d, nil
}

// withLogging fills unset signals with debug logging.
func (d *Daemon) withLogging(sig cardwm.Signals) cardwm.Signals {
	log := d.log.Named("signal")
	if sig.StateChanged == nil {
		sig.StateChanged = func(from, to cardwm.StateID) {
			log.Debug("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
		}
	}
	if sig.Feedback == nil {
		sig.Feedback = func(f cardwm.Feedback) {
			log.Debug("feedback", zap.Stringer("feedback", f))
		}
	}
	if sig.ModalDismissed == nil {
		sig.ModalDismissed = func(child card.ID, reason modal.Reason) {
			log.Info("modal dismissed", zap.Stringer("card", child), zap.Stringer("reason", reason))
		}
	}
	if sig.TouchToShare == nil {
		sig.TouchToShare = func(id card.ID) {
			log.Info("touch to share", zap.Stringer("card", id))
		}
	}
	return sig
}

// Run starts every component and blocks until ctx is canceled or one of
// them fails.
func (d *Daemon) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return d.loop.Run(ctx) })
	g.Go(func() error { return d.server.Serve(ctx) })
	g.Go(func() error { return d.reconciler.Run(ctx) })
	if d.watcher != nil {
		g.Go(func() error { return d.watcher.Run(ctx) })
	}
	for _, run := range d.runners {
		run := run
		g.Go(func() error { return run(ctx, d) })
	}

	d.log.Info("daemon running",
		zap.String("socket", d.server.SocketPath()),
		zap.Bool("watch_config", d.watcher != nil),
		zap.Int("runners", len(d.runners)))

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Reload re-reads the config file and applies it to the running manager.
func (d *Daemon) Reload(ctx context.Context) error {
	res, err := config.LoadFromPath(d.configPath)
	if err != nil {
		return err
	}
	return d.loop.Reconfigure(ctx, res.Config)
}

// Exec runs fn on the manager goroutine and waits for it.
func (d *Daemon) Exec(ctx context.Context, fn func(*cardwm.Manager) error) error {
	return d.loop.Exec(ctx, fn)
}

// Post queues fn on the manager goroutine.
func (d *Daemon) Post(fn func(*cardwm.Manager)) bool {
	return d.loop.Post(fn)
}

// Reconciler returns the drift reconciler, used by host runners to report
// closed windows.
func (d *Daemon) Reconciler() *Reconciler { return d.reconciler }

// SocketPath returns the IPC socket path.
func (d *Daemon) SocketPath() string { return d.server.SocketPath() }
