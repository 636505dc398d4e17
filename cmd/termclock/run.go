package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termclock/console"
	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/appconfig"
	"pkt.systems/termclock/internal/command"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/internal/platform"
	"pkt.systems/termclock/internal/selfupdate"
	"pkt.systems/termclock/internal/sysquery"
	"pkt.systems/termclock/internal/version"
	"pkt.systems/termclock/schema"
)

type runOptions struct {
	cfgPath string
	plain   bool
}

func runConsole(cmd *cobra.Command, opts runOptions) error {
	cfg, err := appconfig.Load(opts.cfgPath)
	if err != nil {
		return err
	}
	ctx, closeLog, err := withFileLogger(cmd.Context(), cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog.Close() }()
	logger := pslog.Ctx(ctx)

	deps := core.SessionDeps{
		Interpreter: newInterpreter(cfg),
		Lockdown:    platform.Nop{},
		Autostart:   platform.Nop{},
	}
	lifecycle := console.NewLifecycle(nil)
	deps.Lifecycle = lifecycle

	execPath := cfg.Update.Executable
	engine, err := newUpdateEngine(cfg, logger)
	if err != nil {
		logger.Warn("self-update disabled", "err", err)
	} else {
		deps.Updater = engine
		execPath = engine.Path()
		lifecycle.Restarter = selfupdate.ExecRestarter{
			Path:   engine.Path(),
			Delay:  cfg.Update.RestartDelay(),
			Before: lifecycle.Suspend,
		}
	}

	var closeRequests <-chan os.Signal
	if cfg.Platform.Lockdown {
		lockdown := platform.NewLockdown(logger)
		defer func() { _ = lockdown.Disable() }()
		deps.Lockdown = lockdown
		closeRequests = lockdown.Requests()
		// Intercepted signals must not cancel the console.
		ctx = context.WithoutCancel(ctx)
	}
	if cfg.Platform.Autostart {
		if execPath == "" {
			if execPath, err = selfupdate.ExecutablePath(); err != nil {
				return err
			}
		}
		deps.Autostart = platform.NewAutostart(cfg.Platform.AutostartDir, execPath, logger)
	}

	session, err := core.NewSession(schema.SessionID(uuid.NewString()), cfg.SessionConfig(), deps)
	if err != nil {
		return err
	}

	var code int
	if opts.plain || !console.IsTerminal(os.Stdin) || !console.IsTerminal(os.Stdout) {
		code, err = console.RunPlain(ctx, console.PlainConfig{
			Session:       session,
			Lifecycle:     lifecycle,
			CloseRequests: closeRequests,
			HistoryLimit:  cfg.Console.HistoryMax,
		})
	} else {
		code, err = console.RunLocal(ctx, console.LocalConfig{
			Session:       session,
			Lifecycle:     lifecycle,
			Theme:         schema.ThemeName(cfg.Console.Theme),
			CloseRequests: closeRequests,
		})
	}
	switch {
	case errors.Is(err, console.ErrInputClosed):
		logger.Info("console input closed before exit")
	case err != nil:
		return err
	}
	if code != 0 {
		return exitCodeError{code: code}
	}
	return nil
}

// withFileLogger moves logging off the terminal into the configured log file.
func withFileLogger(ctx context.Context, cfg appconfig.LoggingConfig) (context.Context, io.Closer, error) {
	if strings.TrimSpace(cfg.File) == "" {
		return ctx, io.NopCloser(nil), nil
	}
	logger, closer, err := logx.OpenFile(cfg.File, cfg.Level)
	if err != nil {
		return ctx, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(pslog.LogLogger(logger).Writer())
	return pslog.ContextWithLogger(ctx, logger), closer, nil
}

func newInterpreter(cfg appconfig.Config) *command.Handler {
	return command.NewHandler(command.HandlerConfig{
		Queries:             sysquery.Queries(sysquery.Config{}),
		DisableAuditLogging: cfg.Logging.DisableAuditTrails,
	})
}

func newUpdateEngine(cfg appconfig.Config, logger pslog.Logger) (*selfupdate.Engine, error) {
	return selfupdate.New(selfupdate.Config{
		URL:             cfg.Update.URL,
		Path:            cfg.Update.Executable,
		CheckTimeout:    cfg.Update.CheckTimeout(),
		DownloadTimeout: cfg.Update.DownloadTimeout(),
		UserAgent:       version.UserAgent(),
		Logger:          logger,
	})
}
