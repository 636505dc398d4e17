package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termclock/console"
	"pkt.systems/termclock/core"
	"pkt.systems/termclock/internal/appconfig"
	"pkt.systems/termclock/internal/platform"
	"pkt.systems/termclock/schema"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over SSH",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.SSH.Addr = addr
			}
			keys, err := console.LoadAuthorizedKeys(cfg.SSH.AuthorizedKeys, logger)
			if err != nil {
				return err
			}
			logger.Info("authorized keys loaded", "path", cfg.SSH.AuthorizedKeys, "keys", keys.Len())

			server := &console.Server{
				Addr:           cfg.SSH.Addr,
				HostKeyPath:    cfg.SSH.HostKeyPath,
				AuthorizedKeys: keys,
				NewSession:     sshSessionFactory(cfg),
				Theme:          schema.ThemeName(cfg.Console.Theme),
				MaxSessions:    cfg.SSH.MaxSessions,
			}
			return server.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides ssh.addr")
	return cmd
}

// sshSessionFactory builds remote sessions. They cannot update, restart or
// touch host integrations.
func sshSessionFactory(cfg appconfig.Config) console.SessionFactory {
	interpreter := newInterpreter(cfg)
	return func(id schema.SessionID, lifecycle core.Lifecycle) (*core.Session, error) {
		return core.NewSession(id, cfg.SessionConfig(), core.SessionDeps{
			Interpreter: interpreter,
			Lockdown:    platform.Nop{},
			Autostart:   platform.Nop{},
			Lifecycle:   lifecycle,
		})
	}
}
