package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/calvinmclean/fiberalign/console"
	"github.com/calvinmclean/fiberalign/controller"
	"github.com/calvinmclean/fiberalign/ui"
)

const appID = "com.calvinmclean.fiberalign"

func main() {
	var configFile, logLevel, driverName, simSerials string
	var interactive, simulate bool
	flag.StringVar(&configFile, "config", "", "YAML configuration file")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&driverName, "driver", "", "Driver: apt for KPZ101 cubes, sim for simulated piezos")
	flag.BoolVar(&simulate, "simulate", false, "Shorthand for -driver sim")
	flag.StringVar(&simSerials, "sim-serials", "", "Comma-separated serial numbers for the sim driver")
	flag.BoolVar(&interactive, "interactive", isTerminal(os.Stdin), "Line editing and completion for typed commands")
	flag.Parse()

	logger := newLogger(logLevel)
	slog.SetDefault(logger)

	cfg := controller.DefaultConfig()
	if configFile != "" {
		err := controller.LoadConfigFile(configFile, &cfg)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	cfg.ApplyEnv()
	if driverName != "" {
		cfg.Driver = driverName
	}
	if simulate {
		cfg.Driver = controller.DriverSim
	}
	if simSerials != "" {
		cfg.SimSerials = simSerials
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if os.Getenv("ENABLE_UI") == "true" {
		runUI(ctx, cfg, logger)
		return
	}

	err := runCLI(ctx, cfg, interactive, logger)
	if err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func runUI(ctx context.Context, cfg controller.Config, logger *slog.Logger) {
	application := app.NewWithID(appID)

	configWindow := ui.NewConfigWindow(application, logger)
	configWindow.OnSubmit = func(c *controller.Controller) {
		alignUI := ui.NewAlignUI(application, c, logger)
		alignUI.Show(ctx)
	}
	configWindow.Show(&cfg)

	go func() {
		<-ctx.Done()
		fyne.Do(application.Quit)
	}()

	application.Run()
}

func runCLI(ctx context.Context, cfg controller.Config, interactive bool, logger *slog.Logger) error {
	drv, err := cfg.NewDriver(logger)
	if err != nil {
		return fmt.Errorf("error creating driver: %w", err)
	}

	c := controller.New(drv, logger)
	defer func() {
		err := c.Disconnect()
		if err != nil {
			logger.Error("error disconnecting", "error", err)
		}
	}()

	con := console.New(c, os.Stdout)
	if interactive {
		return con.RunInteractive(ctx)
	}
	return con.Run(ctx, os.Stdin)
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	err := l.UnmarshalText([]byte(level))
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
