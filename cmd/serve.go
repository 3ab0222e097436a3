package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/logger"
	"github.com/spigell/jobapply-dashboard/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard as a JSON API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", web.DefaultAddr, "address to listen on")
	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signalContext()
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting the jobapply-dashboard server", zap.String("version", version))

	d, err := newDashboard(config, logger)
	if err != nil {
		logger.Fatal("creating the dashboard", zap.Error(err))
	}

	if err := d.Match(ctx); err != nil {
		logger.Warn("loading matches", zap.Error(err))
	}

	go d.AutoRefresh(ctx, config.Dashboard.RefreshSeconds)

	srv := web.New(ctx, d, logger, web.Config{
		Addr:         config.Serve.Addr,
		AllowOrigins: config.Serve.AllowOrigins,
	})

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving the dashboard", zap.Error(err))
	}
}
