// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast"
	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast/ws"
	"github.com/tamzrod/tulsbot-supervisor/internal/commands"
	"github.com/tamzrod/tulsbot-supervisor/internal/config"
	"github.com/tamzrod/tulsbot-supervisor/internal/forward"
	"github.com/tamzrod/tulsbot-supervisor/internal/metrics"
	"github.com/tamzrod/tulsbot-supervisor/internal/poller"
	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
	"github.com/tamzrod/tulsbot-supervisor/internal/server"
	"github.com/tamzrod/tulsbot-supervisor/internal/shell"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
	"github.com/tamzrod/tulsbot-supervisor/internal/store"
)

// MainURL is the content of the main window.
const MainURL = "index.html"

// App is one assembled supervisor: store, poll loop, broadcaster,
// popover, command surface and HTTP binding over a headless shell.
type App struct {
	Metrics     *metrics.Collector
	Store       *store.Store
	Shell       *shell.Shell
	Hub         *ws.Hub
	Broadcaster *broadcast.Broadcaster
	Popover     *popover.Manager
	Commands    *commands.Dispatcher
	Poller      *poller.Poller
	Server      *server.Server
}

type options struct {
	pollCfg *poller.Config
	prober  poller.Prober
}

type Option func(*options)

// WithPoller replaces the production poll configuration and probe.
func WithPoller(cfg poller.Config, prober poller.Prober) Option {
	return func(o *options) {
		o.pollCfg = &cfg
		o.prober = prober
	}
}

// New wires every component. cfg must already be validated and
// normalized.
func New(cfg *config.Config, log *logrus.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: config is nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{}
	a.Metrics = metrics.New()

	// --------------------
	// Poller + store
	// --------------------

	var err error
	if o.pollCfg != nil {
		a.Poller, err = poller.New(*o.pollCfg, o.prober,
			poller.WithLogger(log), poller.WithRecorder(a.Metrics))
	} else {
		a.Poller, err = poller.Build(poller.WithLogger(log), poller.WithRecorder(a.Metrics))
	}
	if err != nil {
		return nil, fmt.Errorf("poller build failed: %w", err)
	}

	a.Store = store.New(status.Initial(a.Poller.Endpoints()))

	// --------------------
	// Shell: every window is an observer
	// --------------------

	a.Shell = shell.New(
		shell.WithLogger(log),
		shell.WithSubscriptions(status.EventHealthUpdate),
	)
	_, err = a.Shell.CreateWindow(popover.WindowOptions{
		Label:       shell.MainLabel,
		URL:         MainURL,
		Title:       "Tulsbot",
		Width:       1200,
		Height:      800,
		Decorations: true,
	})
	if err != nil {
		return nil, fmt.Errorf("main window: %w", err)
	}

	// --------------------
	// Broadcast: tray + websocket observers + shell windows
	// --------------------

	a.Hub = ws.NewHub(ws.WithLogger(log), ws.WithRecorder(a.Metrics))
	a.Broadcaster = broadcast.New(a.Shell.Tray(),
		broadcast.WithLogger(log),
		broadcast.WithRecorder(a.Metrics),
		broadcast.WithEmitters(a.Hub, a.Shell),
	)

	// --------------------
	// Popover + commands
	// --------------------

	a.Popover = popover.New(a.Shell, popover.WithLogger(log), popover.WithRecorder(a.Metrics))

	fwd := forward.New(forward.WithLogger(log), forward.WithRecorder(a.Metrics))
	a.Commands = commands.New(a.Store, a.Popover, a.Shell, fwd, log)

	a.Shell.Tray().OnClick(a.Commands.ClickTray)

	a.Server = server.New(cfg.Server, a.Commands, log,
		server.WithObservers(a.Hub),
		server.WithMetrics(a.Metrics.Handler()),
	)

	return a, nil
}

// Startup shows and focuses the main window and registers the focus-loss
// handler on an existing popover. Failures are logged only.
func (a *App) Startup() {
	a.Commands.Startup()
	a.Popover.Attach()
}

// Serve runs the hub, the poll loop and the HTTP server on l until ctx is
// done or one of them fails.
func (a *App) Serve(ctx context.Context, l net.Listener) error {
	return a.run(ctx, func(ctx context.Context) error {
		return a.Server.Serve(ctx, l)
	})
}

// Run is Serve on the configured address.
func (a *App) Run(ctx context.Context) error {
	return a.run(ctx, a.Server.Start)
}

func (a *App) run(ctx context.Context, serve func(context.Context) error) error {
	a.Startup()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		a.Poller.Run(ctx, a.Store, a.Broadcaster)
		return nil
	})
	g.Go(func() error {
		return serve(ctx)
	})

	return g.Wait()
}
