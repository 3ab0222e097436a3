package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/logger"
	"github.com/spigell/jobapply-dashboard/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse job matches as cards in a full screen dashboard",
	Run: func(_ *cobra.Command, _ []string) {
		runTUI()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().String("log-file", "", "file for log entries while the dashboard is open (default is jobapply-dashboard.log in the temp dir)")
	viper.BindPFlag("log-file", tuiCmd.Flags().Lookup("log-file"))
}

func runTUI() {
	ctx, stop := signalContext()
	defer stop()

	config, err := getConfig()
	if err != nil {
		log.Fatalf("getting a config: %s", err)
	}

	logFile := config.LogFile
	if logFile == "" {
		logFile = filepath.Join(os.TempDir(), app+".log")
	}

	logger, err := logger.NewWithOutput(viper.GetBool("json"), viper.GetBool("debug"), logFile)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	logger.Info("starting the jobapply-dashboard tui", zap.String("version", version))

	d, err := newDashboard(config, logger)
	if err != nil {
		log.Fatalf("creating the dashboard: %s", err)
	}

	go d.AutoRefresh(ctx, config.Dashboard.RefreshSeconds)

	if err := tui.Run(ctx, d, logger); err != nil {
		logger.Error("running the dashboard", zap.Error(err))
		fmt.Fprintf(os.Stderr, "%s: %s (logs are in %s)\n", app, err, logFile)
		os.Exit(1)
	}
}
