package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	cfgFile  string
	logLevel string
	logJSON  bool
	cfg      *database.Config
	log      = logger.Nop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "warehouser",
		Short:        "Connect to SQL databases and upsert rows into them",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}

			lc := logger.DefaultConfig()
			lc.Level = logLevel
			if !logJSON {
				lc.Format = "console"
			}
			log = logger.New(lc)

			var err error
			cfg, err = database.LoadFile(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "warehouser.yaml",
		"settings file (dbms, host, port, user, password, database); WAREHOUSER_* env vars override it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, error or off")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON instead of console text")

	rootCmd.AddCommand(uriCmd())
	rootCmd.AddCommand(pingCmd())
	rootCmd.AddCommand(reflectCmd())
	rootCmd.AddCommand(upsertCmd())

	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
