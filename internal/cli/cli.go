// Package cli is the terminal front end: one-shot commands and an
// interactive session over the rankings controller.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/adapters/session"
	"github.com/xcri/rankings/internal/app/calcdate"
	"github.com/xcri/rankings/internal/config"
	"github.com/xcri/rankings/pkg/logger"
)

// App runs CLI commands against one backend.
type App struct {
	cfg        *config.Config
	out        io.Writer
	errOut     io.Writer
	in         io.Reader
	store      session.Store
	httpClient *http.Client
	logger     logger.Logger
}

// Option configures an App.
type Option func(*App)

// WithOutput sets where results are written.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.out = w
		}
	}
}

// WithErrorOutput sets where usage and errors are written.
func WithErrorOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.errOut = w
		}
	}
}

// WithInput sets where the interactive session reads from.
func WithInput(r io.Reader) Option {
	return func(a *App) {
		if r != nil {
			a.in = r
		}
	}
}

// WithStore injects the session store instead of building one from config.
func WithStore(s session.Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithHTTPClient sets the client used for backend requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an App on cfg.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
		in:     os.Stdin,
		logger: logger.Get().Named("cli"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type command struct {
	name    string
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

func commands() []command {
	return []command{
		{"list", "print one page of a ranking list", (*App).runList},
		{"snapshots", "list published historical snapshots", (*App).runSnapshots},
		{"matchups", "print a team's knockout matchup history", (*App).runMatchups},
		{"h2h", "print the head-to-head record of two teams", (*App).runHeadToHead},
		{"common", "compare two teams through common opponents", (*App).runCommon},
		{"meet", "print every matchup of one race", (*App).runMeet},
		{"team", "print a team's profile: roster, rank history and resume", (*App).runTeam},
		{"scs", "print an athlete's SCS component breakdown", (*App).runSCS},
		{"calc-date", "print when the rankings were last calculated", (*App).runCalcDate},
		{"session", "interactive session reading intents from input", (*App).runSession},
	}
}

// Run parses global flags, then dispatches the subcommand in args.
func (a *App) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rankings", flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = a.usage
	baseURL := fs.String("base-url", a.cfg.BaseURL, "ranking backend base URL")
	metricsAddr := fs.String("metrics-addr", a.cfg.MetricsAddr, "serve Prometheus metrics on this address")
	store := fs.String("session-store", a.cfg.SessionStore, "session cache: memory or redis")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	a.cfg.BaseURL, a.cfg.MetricsAddr, a.cfg.SessionStore = *baseURL, *metricsAddr, *store
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		a.usage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	for _, c := range commands() {
		if c.name != rest[0] {
			continue
		}
		if a.cfg.MetricsAddr != "" {
			stop := serveMetrics(ctx, a.cfg.MetricsAddr, a.logger)
			defer stop()
		}
		return c.run(a, ctx, rest[1:])
	}
	a.usage()
	return fmt.Errorf("%w: %q", ErrUnknownCommand, rest[0])
}

func (a *App) usage() {
	var b strings.Builder
	b.WriteString("Usage: rankings [global flags] <command> [flags]\n\nCommands:\n")
	for _, c := range commands() {
		fmt.Fprintf(&b, "  %-10s %s\n", c.name, c.summary)
	}
	b.WriteString("\nGlobal flags:\n  -base-url string\n  -metrics-addr string\n  -session-store memory|redis\n")
	b.WriteString("\nRun 'rankings <command> -h' for command flags.\n")
	_, _ = io.WriteString(a.errOut, b.String())
}

func (a *App) client() (*rankingsapi.Client, error) {
	opts := []rankingsapi.Option{
		rankingsapi.WithTimeout(a.cfg.RequestTimeout()),
		rankingsapi.WithMaxRetries(a.cfg.MaxRetries),
		rankingsapi.WithKnockoutPageLimit(a.cfg.KnockoutPageLimit),
		rankingsapi.WithLogger(a.logger.Named("rankingsapi")),
	}
	if a.httpClient != nil {
		opts = append(opts, rankingsapi.WithHTTPClient(a.httpClient))
	}
	return rankingsapi.New(a.cfg.BaseURL, opts...)
}

// calcCache builds the latest-calculation cache on the session store. The
// returned function releases the store.
func (a *App) calcCache(ctx context.Context, src calcdate.Source) (*calcdate.Cache, func(), error) {
	store, closeStore, err := a.sessionStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return calcdate.New(src, store, calcdate.WithLogger(a.logger.Named("calcdate"))), closeStore, nil
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	return nil
}
