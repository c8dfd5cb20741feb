package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/spf13/cobra"

	"screen-pds/src/action"
	"screen-pds/src/clipboard"
	"screen-pds/src/config"
	"screen-pds/src/eventloop"
	"screen-pds/src/gui"
	"screen-pds/src/hotkey"
	"screen-pds/src/logutil"
	"screen-pds/src/overlay"
	"screen-pds/src/screenshot"
	"screen-pds/src/session"
	"screen-pds/src/settings"
	"screen-pds/src/singleinstance"
	"screen-pds/src/timeline"
	"screen-pds/src/tray"
	"screen-pds/src/worker"
)

type mainOptions struct {
	settingsPath string
	tick         time.Duration
	verbose      bool
	action       string
	status       bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{config.AppName}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Capture the screen, crop it and export the result",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().StringVar(&opts.settingsPath, "settings", "", "Path to the settings YAML file (highest precedence)")
	cmd.Flags().DurationVar(&opts.tick, "tick", 0, "State machine tick period (default from TICK_MS or 1s)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	cmd.Flags().StringVar(&opts.action, "action", "", "Post an action (new, save, undo, redo, cancel) to the running instance")
	cmd.Flags().BoolVar(&opts.status, "status", false, "Report whether an instance is running and exit")

	return cmd
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"settings", "tick", "verbose", "action", "status"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

// forwarder delivers an action to an already running instance.
type forwarder interface {
	Forward(ctx context.Context, a action.Action) (bool, error)
}

type residentClient struct{}

func (residentClient) Forward(ctx context.Context, a action.Action) (bool, error) {
	return singleinstance.Forward(ctx, config.AppName, a)
}

// handleActionWithDelegation hands a to the resident instance. fallback runs
// when no resident accepted it.
func handleActionWithDelegation(a action.Action, client forwarder, fallback func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	delegated, err := client.Forward(ctx, a)
	if err != nil {
		log.Printf("Delegation error: %v; starting resident", err)
		fallback()
		return
	}
	if delegated {
		log.Printf("Delegated %s to resident", a)
		return
	}
	log.Printf("No resident detected, starting one")
	fallback()
}

// reportStatus prints whether a resident instance answers on its port.
func reportStatus(w io.Writer, running func(appName string) bool) {
	if running(config.AppName) {
		fmt.Fprintf(w, "%s is running on %s\n", config.AppName, singleinstance.Address(config.AppName))
		return
	}
	fmt.Fprintf(w, "%s is not running\n", config.AppName)
}

func runWithOptions(opts mainOptions) error {
	if opts.status {
		reportStatus(os.Stdout, singleinstance.Running)
		return nil
	}
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		SettingsPathOverride: opts.settingsPath,
		TickOverride:         opts.tick,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var fallback io.Writer = io.Discard
	if opts.verbose {
		fallback = os.Stderr
	}
	logutil.Setup(cfg.EnableFileLogging, fallback)

	startAction := action.None
	if opts.action != "" {
		a, err := action.Parse(opts.action)
		if err != nil {
			return err
		}
		startAction = a
	}

	if startAction != action.None {
		var runErr error
		handleActionWithDelegation(startAction, residentClient{}, func() {
			runErr = runResident(cfg, startAction)
		})
		return runErr
	}
	return runResident(cfg, action.None)
}

func runResident(cfg *config.Config, startAction action.Action) error {
	guard, err := singleinstance.Acquire(config.AppName)
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			fmt.Printf("%s is already running on %s\n", config.AppName, singleinstance.Address(config.AppName))
		}
		return err
	}
	defer func() { _ = guard.Release() }()

	enableDPIAwareness()
	logMonitorConfiguration()

	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable: %v", err)
	}
	clipPool := worker.New(1)
	defer clipPool.Close()

	tl, err := timeline.New(cfg.TimelineDir)
	if err != nil {
		log.Fatalf("Failed to create timeline directory: %v", err)
	}
	defer func() {
		if err := tl.Remove(); err != nil {
			log.Printf("Failed to remove timeline %s: %v", tl.Dir(), err)
		}
	}()

	store := settings.Store{Path: cfg.SettingsPath}
	log.Printf("Settings file: %s", cfg.SettingsPath)
	log.Printf("Timeline directory: %s", tl.Dir())
	log.Printf("Tick: %s, hotkey refresh: %s", cfg.TickInterval, cfg.HotkeyRefresh)

	fyneApp := app.NewWithID("io.github.screen-pds")
	fyneApp.SetIcon(tray.Icon)

	bus := eventloop.NewBus(eventloop.DefaultCapacity)
	defer bus.Close()
	listener := hotkey.NewListener(bus)

	overlayWindow := overlay.New(fyneApp, bus)
	var mainWindow *gui.MainWindow
	settingsWindow := gui.NewSettingsWindow(fyneApp, store, func(s settings.Settings) {
		mainWindow.SetShortcuts(s)
		listener.SetBindings(hotkey.BindingsFor(s))
	})
	mainWindow = gui.NewMainWindow(fyneApp, bus, settingsWindow.Show)
	mainWindow.SetShortcuts(store.Snapshot())
	mainWindow.Window().SetMaster()

	machine := session.New(session.Deps{
		Timeline:  tl,
		Capturer:  screenshot.NewCapturer(),
		Clipboard: clipboard.AsyncTarget{Pool: clipPool},
		View:      overlayWindow,
		Host:      mainWindow,
		Prompt:    gui.SavePrompt{Parent: overlayWindow.Window},
		Selection: mainWindow,
		Settings:  store.Snapshot,
	})

	stepper := &statusStepper{machine: machine}
	if desk, ok := fyneApp.(desktop.App); ok {
		post := func(a action.Action) func() { return func() { bus.Post(a) } }
		stepper.tray = tray.New(desk, tray.Callbacks{
			OnNew:      post(action.New),
			OnSave:     post(action.Save),
			OnCancel:   post(action.Cancel),
			OnShow:     mainWindow.Restore,
			OnSettings: settingsWindow.Show,
			OnQuit:     fyneApp.Quit,
		})
	} else {
		log.Printf("System tray unsupported on this platform")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Hotkey listener stopped: %v", err)
		}
	}()
	keepBindingsFresh(ctx, listener, cfg.SettingsPath, cfg.HotkeyRefresh, store.Snapshot, func(s settings.Settings) {
		fyne.Do(func() { mainWindow.SetShortcuts(s) })
	})

	go func() {
		if err := guard.Serve(ctx, bus); err != nil {
			log.Printf("Resident server stopped: %v", err)
		}
	}()

	loop := eventloop.New(bus, &action.Flag{}, stepper, cfg.TickInterval, fyne.Do)
	go func() { _ = loop.Run(ctx) }()

	if startAction.Valid() {
		bus.Post(startAction)
	}

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			fyne.Do(fyneApp.Quit)
		case <-ctx.Done():
		}
	}()

	log.Printf("%s initialized", config.AppName)
	mainWindow.Window().Show()
	fyneApp.Run()
	log.Printf("%s exiting", config.AppName)
	return nil
}

// keepBindingsFresh re-registers the hotkeys every period and, while the
// settings file can be watched, also as soon as it changes.
func keepBindingsFresh(ctx context.Context, l *hotkey.Listener, settingsPath string, every time.Duration,
	load func() settings.Settings, changed func(settings.Settings)) {
	l.SetBindings(hotkey.BindingsFor(load()))
	go l.Refresh(ctx, func() []hotkey.Binding {
		return hotkey.BindingsFor(load())
	}, every)
	go func() {
		err := settings.Watch(ctx, settingsPath, func() {
			s := load()
			l.SetBindings(hotkey.BindingsFor(s))
			if changed != nil {
				changed(s)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Settings watcher unavailable, relying on %s refresh: %v", every, err)
		}
	}()
}

// statusStepper mirrors session state changes into the tray menu.
type statusStepper struct {
	machine *session.Machine
	tray    *tray.Manager
	last    session.State
}

func (s *statusStepper) Step(a action.Action) {
	s.machine.Step(a)
	st := s.machine.State()
	if st == s.last {
		return
	}
	s.last = st
	log.Printf("Session %s", st)
	if s.tray != nil {
		s.tray.SetStatus(st.String())
		s.tray.SetActive(s.machine.Active())
	}
}
