package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"pkt.systems/pslog"
	"pkt.systems/termclock/console"
	"pkt.systems/termclock/internal/appconfig"
	"pkt.systems/termclock/internal/logx"
	"pkt.systems/termclock/schema"
)

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	var skipUpdate bool
	var skipSSH bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run termclock diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())

			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			configPath := cfgPath
			if strings.TrimSpace(configPath) == "" {
				path, err := appconfig.DefaultConfigPath()
				if err != nil {
					return err
				}
				configPath = path
			}
			logger.Info("doctor start", "config", configPath)

			if cfg.Logging.File != "" {
				_, closer, err := logx.OpenFile(cfg.Logging.File, cfg.Logging.Level)
				if err != nil {
					return fmt.Errorf("log file: %w", err)
				}
				_ = closer.Close()
				logger.Info("doctor log file ok", "path", cfg.Logging.File)
			}

			engine, err := newUpdateEngine(cfg, logger)
			if err != nil {
				return fmt.Errorf("self-update: %w", err)
			}
			if _, err := os.Stat(engine.Path()); err != nil {
				return fmt.Errorf("executable: %w", err)
			}
			logger.Info("doctor executable ok", "path", engine.Path())
			if !skipUpdate {
				check := engine.CheckForUpdate(cmd.Context())
				if check.Status == schema.UpdateCheckFailed {
					return fmt.Errorf("update check: %w", check.Err)
				}
				logger.Info("doctor update check ok", "url", cfg.Update.URL, "status", check.Status.String(), "remote_size", check.RemoteSize, "local_size", check.LocalSize)
			}

			if !skipSSH {
				signer, err := console.EnsureHostKey(cfg.SSH.HostKeyPath)
				if err != nil {
					return fmt.Errorf("ssh host key: %w", err)
				}
				logger.Info("doctor ssh host key ok", "path", cfg.SSH.HostKeyPath, "fingerprint", ssh.FingerprintSHA256(signer.PublicKey()))
				keys, err := console.LoadAuthorizedKeys(cfg.SSH.AuthorizedKeys, logger)
				if err != nil {
					return fmt.Errorf("ssh authorized keys: %w", err)
				}
				logger.Info("doctor ssh authorized keys ok", "path", cfg.SSH.AuthorizedKeys, "keys", keys.Len())
			}

			logger.Info("doctor platform", "lockdown", cfg.Platform.Lockdown, "autostart", cfg.Platform.Autostart, "autostart_dir", cfg.Platform.AutostartDir)
			logger.Info("doctor ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&skipUpdate, "skip-update", false, "skip the remote update check")
	cmd.Flags().BoolVar(&skipSSH, "skip-ssh", false, "skip SSH host key and authorized keys checks")
	return cmd
}
