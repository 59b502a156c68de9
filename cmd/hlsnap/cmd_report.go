package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hlsnap/internal/application/usecase/report"
	"hlsnap/internal/infrastructure/config"
	"hlsnap/internal/infrastructure/container"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch market data and write the ranked summary",
	Long: `Fetch metadata and asset contexts, rank assets by funding rate, open
interest and 24h price change, and write the top-N summary as JSON.

Examples:
  hlsnap report
  hlsnap report --top 10 --out out/summary.json
  hlsnap report --every 5`,
	RunE: runReport,
}

var (
	reportOut   string
	reportTop   int
	reportEvery int
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (default from config)")
	reportCmd.Flags().IntVar(&reportTop, "top", 0, "entries per ranking (default from config)")
	reportCmd.Flags().IntVar(&reportEvery, "every", 0, "repeat every N minutes, 0 runs once")
}

// applyReportFlags 命令行参数覆盖配置
func applyReportFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("out") {
		c.Report.OutputPath = reportOut
	}
	if cmd.Flags().Changed("top") && reportTop > 0 {
		c.Report.TopN = reportTop
	}
	if cmd.Flags().Changed("every") && reportEvery >= 0 {
		c.Report.EveryMin = reportEvery
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	applyReportFlags(cmd, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	svc := report.NewService(report.ServiceDeps{
		Source:    c.InfoClient(),
		Writer:    c.ReportWriter(),
		Publisher: c.ReportPublisher(),
		TopN:      cfg.Report.TopN,
		EveryMin:  cfg.Report.EveryMin,
	})

	log.Info().
		Str("out", cfg.Report.OutputPath).
		Int("top_n", cfg.Report.TopN).
		Int("every_min", cfg.Report.EveryMin).
		Bool("redis", cfg.Redis.Enabled).
		Msg("hlsnap report started")

	return svc.Run(ctx)
}
