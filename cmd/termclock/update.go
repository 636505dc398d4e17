package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/termclock/internal/appconfig"
	"pkt.systems/termclock/schema"
)

func newUpdateCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Check for or install a new termclock executable",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Compare the remote executable with the installed one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			engine, err := newUpdateEngine(cfg, pslog.Ctx(cmd.Context()))
			if err != nil {
				return err
			}
			check := engine.CheckForUpdate(cmd.Context())
			if check.Status == schema.UpdateCheckFailed {
				return fmt.Errorf("update check failed: %w", check.Err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: remote %d bytes, local %d bytes (%s)\n",
				check.Status, check.RemoteSize, check.LocalSize, engine.Path())
			return err
		},
	})

	var force bool
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Download and install the remote executable",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			engine, err := newUpdateEngine(cfg, logger)
			if err != nil {
				return err
			}
			if !force {
				check := engine.CheckForUpdate(cmd.Context())
				switch check.Status {
				case schema.UpdateCheckFailed:
					return fmt.Errorf("update check failed: %w", check.Err)
				case schema.UpdateUpToDate:
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "termclock is up to date")
					return err
				}
			}
			if err := engine.PerformUpdate(cmd.Context()); err != nil {
				return err
			}
			logger.Info("update installed", "path", engine.Path(), "backup", engine.BackupPath())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", engine.Path())
			return err
		},
	}
	apply.Flags().BoolVar(&force, "force", false, "install even when the sizes match")
	cmd.AddCommand(apply)

	return cmd
}
