package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"usersearch/internal/client"
	"usersearch/internal/config"
	"usersearch/internal/eventbus"
	"usersearch/internal/logging"
	"usersearch/internal/search"
	"usersearch/internal/ui"
	"usersearch/internal/ui/views"
)

// options holds flags shared by every command
type options struct {
	configPath string
	baseURL    string
	backend    string
	logFile    string
	query      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:          "usersearch",
		Short:        "Search GitHub users from the terminal",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&opts.baseURL, "base-url", "", "search API base URL, e.g. https://api.github.com/search")
	flags.StringVar(&opts.backend, "backend", "", "client backend: rest or go-github")
	flags.StringVar(&opts.logFile, "log-file", "", "log file path")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search term to run on start")

	cmd.AddCommand(newSearchCmd(opts))
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var pages int

	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Print users matching TERM without starting the UI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			return runSearch(cmd.Context(), opts, strings.Join(args, " "), pages, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of result pages to fetch")
	return cmd
}

// app bundles the services both commands run on
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	bus     eventbus.EventBus
	ctrl    *search.Controller
	cleanup func()
}

func newApp(opts *options) (*app, error) {
	// Logs go to stderr until the config names a file
	logger := logrus.New()
	bus := eventbus.New(logger)

	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigLoadedEvent); ok {
			logger.WithFields(logrus.Fields{
				"path":     event.Path,
				"base_url": event.BaseURL,
				"backend":  event.Backend,
			}).Info("config loaded")
		}
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ConfigSavedEvent); ok {
			logger.WithField("path", event.Path).Info("config saved")
		}
	})

	configSvc := config.NewConfigServiceWithBus(opts.configPath, bus)
	cfg, err := loadOrCreateConfig(configSvc)
	if err != nil {
		bus.Close()
		return nil, err
	}

	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.backend != "" {
		cfg.API.Backend = opts.backend
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if err := cfg.Validate(); err != nil {
		bus.Close()
		return nil, err
	}

	closeLog, err := logging.Apply(logger, logging.Options{
		Output: cfg.Log.File,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		bus.Close()
		return nil, err
	}

	c, err := client.New(cfg, logger)
	if err != nil {
		bus.Close()
		closeLog()
		return nil, err
	}

	ctrl := search.NewController(c,
		search.WithEventBus(bus),
		search.WithLogger(logger),
		search.WithTimeout(cfg.API.RequestTimeout()),
	)

	return &app{
		cfg:  cfg,
		log:  logger,
		bus:  bus,
		ctrl: ctrl,
		cleanup: func() {
			bus.Close()
			closeLog()
		},
	}, nil
}

func (a *app) Close() {
	a.cleanup()
}

// loadOrCreateConfig loads the config file, writing the defaults first when
// there is none yet
func loadOrCreateConfig(configSvc config.ConfigService) (*config.Config, error) {
	if _, err := os.Stat(configSvc.Path()); errors.Is(err, os.ErrNotExist) {
		if err := configSvc.Save(config.DefaultConfig()); err != nil {
			return nil, err
		}
	}

	cfg, err := configSvc.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configSvc.Path(), err)
	}
	return cfg, nil
}

func runTUI(ctx context.Context, opts *options) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model := ui.NewModel(ctx, a.ctrl, a.cfg, a.log)
	model.SetInitialQuery(opts.query)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Forward search events to the UI without blocking the bus
	eventChan := make(chan eventbus.DomainEvent, 100)
	forwardEvent := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			a.log.WithField("event", e.Type()).Warn("event channel full, dropping event")
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventSearchCompleted,
		eventbus.EventSearchFailed,
		eventbus.EventStaleResponseDiscarded,
		eventbus.EventQueryCleared,
	} {
		unsubscribe := a.bus.Subscribe(t, forwardEvent)
		defer unsubscribe()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()

	a.log.Info("starting UI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		a.log.WithError(err).Error("UI exited with error")
		return err
	}
	a.log.Info("UI exited normally")
	return nil
}

// runSearch fetches up to pages pages of term and prints them as a table
func runSearch(ctx context.Context, opts *options, term string, pages int, out io.Writer) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	req := a.ctrl.SetQuery(strings.TrimSpace(term))
	for fetched := 1; req != nil; fetched++ {
		if err := a.ctrl.Do(ctx, req); err != nil {
			return fmt.Errorf("search %q page %d: %w", req.Query, req.Page, err)
		}
		if fetched >= pages {
			break
		}
		req = a.ctrl.LoadMore()
	}

	s := a.ctrl.State()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOGIN\tID\tPROFILE")
	for _, u := range s.Results {
		fmt.Fprintf(w, "%s\t%d\t%s\n", u.Handle, u.ID, u.ProfileURL)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if counter := views.Counter(len(s.Results), s.TotalCount); counter != "" {
		fmt.Fprintln(out, counter)
	}
	return nil
}
