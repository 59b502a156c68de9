package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hlsnap/internal/infrastructure/config"
	"hlsnap/internal/infrastructure/logger"
)

var (
	configPath string
	cfg        *config.Config
)

// rootCmd is the base command for the hlsnap CLI
var rootCmd = &cobra.Command{
	Use:   "hlsnap",
	Short: "Hyperliquid market snapshot tool",
	Long: `hlsnap polls the Hyperliquid public API and writes a ranked market summary
(funding rates, open interest, 24h movers), or captures a single l2Book
order-book snapshot for one asset.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Setup(cfg.App.LogLevel)
		log.Debug().Str("config", configPath).Msg("config loaded")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.toml", "path to config.toml")
}
