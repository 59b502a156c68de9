package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hlsnap/internal/application/usecase/capture"
	"hlsnap/internal/infrastructure/config"
	"hlsnap/internal/infrastructure/container"
	"hlsnap/internal/infrastructure/exchange/hyperliquid"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture one l2Book snapshot for an asset",
	Long: `Subscribe to the l2Book channel of one asset, wait for the first matching
message and write it pretty-printed as JSON.

Examples:
  hlsnap capture
  hlsnap capture --asset btc --out btc_book.json --timeout 10s`,
	RunE: runCapture,
}

var (
	captureAsset   string
	captureOut     string
	captureTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringVar(&captureAsset, "asset", "", "coin to subscribe (default from config)")
	captureCmd.Flags().StringVar(&captureOut, "out", "", "output file (default from config)")
	captureCmd.Flags().DurationVar(&captureTimeout, "timeout", 0, "wait limit for the first snapshot (default from config)")
}

// applyCaptureFlags 命令行参数覆盖配置，返回等待超时
func applyCaptureFlags(cmd *cobra.Command, c *config.Config) time.Duration {
	if cmd.Flags().Changed("asset") {
		if a := config.NormalizeAsset(captureAsset); a != "" {
			c.Capture.Asset = a
		}
	}
	if cmd.Flags().Changed("out") {
		c.Capture.OutputPath = captureOut
	}
	if cmd.Flags().Changed("timeout") && captureTimeout > 0 {
		return captureTimeout
	}
	return time.Duration(c.Capture.TimeoutSec) * time.Second
}

func runCapture(cmd *cobra.Command, args []string) error {
	timeout := applyCaptureFlags(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	svc := capture.NewService(capture.ServiceDeps{
		Stream:       c.BookStream(),
		Writer:       c.SnapshotWriter(),
		Asset:        cfg.Capture.Asset,
		Match:        hyperliquid.L2BookFilter(cfg.Capture.Asset),
		ConnectGrace: time.Duration(cfg.Capture.ConnectGraceSec) * time.Second,
		Timeout:      timeout,
	})

	log.Info().
		Str("asset", cfg.Capture.Asset).
		Str("out", cfg.Capture.OutputPath).
		Dur("timeout", timeout).
		Msg("hlsnap capture started")

	if err := svc.Run(ctx); err != nil {
		return err
	}
	log.Info().Str("state", svc.State().String()).Msg("capture finished")
	return nil
}
