package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/rijalprasetyo/converter-file/internal/config"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/logging"
	"github.com/rijalprasetyo/converter-file/pkg/client"
)

const version = "0.1.0"

var (
	configPath string
	logLevel   string
	socketPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "fconv",
		Short:         "Batch file converter",
		Long:          "Compress JPEGs to a size budget, convert between image formats and between office documents.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Daemon socket path")

	rootCmd.AddCommand(
		newConvertCmd(),
		newFormatsCmd(),
		newSubmitCmd(),
		newStatusCmd(),
		newBatchCmd(),
		newListCmd(),
		newStatsCmd(),
		newTUICmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errBatchFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// loadConfig aplica los flags globales sobre el archivo de configuración
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) hclog.Logger {
	// El CLI imprime su propio progreso; los logs van a stderr
	return logging.NewLogger("fconv", logging.LevelFromEnv(cfg.LogLevel), cfg.LogJSON, os.Stderr)
}

func newEngine(cfg *config.Config, logger hclog.Logger) *converter.Engine {
	opts := cfg.EngineOptions()
	opts.Logger = logger.Named("engine")
	return converter.NewEngine(opts)
}

func newClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return client.NewClient(cfg.SocketPath), nil
}
