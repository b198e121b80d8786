// Command stackpool runs randomized workloads against stackpool pools and
// reports storage reuse.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"stackpool/logging"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// app carries what the root command resolves for its subcommands.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	logCfg := logging.DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:           "stackpool",
		Short:         "Exercise pool-allocated stacks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := bindViper(a.v, cmd.Flags(), configPath); err != nil {
				return err
			}
			cfg := logCfg
			if err := a.v.Unmarshal(&cfg); err != nil {
				return errors.Wrap(err, "decode logging config")
			}
			logger, err := logging.New(cfg)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&configPath, "config", os.Getenv("STACKPOOL_CONFIG"), "config file (yaml, json or toml)")
	pf.String("log-level", logCfg.Level, "log level: debug, info, warn or error")
	pf.String("log-format", logCfg.Encoding, "log format: console or json")
	pf.StringSlice("log-output", logCfg.OutputPaths, "log destinations")
	pf.Bool("log-development", false, "development logging")

	cmd.AddCommand(newRunCommand(a), newVersionCommand())
	return cmd
}

// bindViper layers flags over STACKPOOL_* environment variables over the
// config file.
func bindViper(v *viper.Viper, fs *pflag.FlagSet, configPath string) error {
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("STACKPOOL")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return errors.Wrap(err, "bind flags")
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("stackpool")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "stackpool"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configPath == "" {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
