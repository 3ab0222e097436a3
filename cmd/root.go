package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/filtering"
	"github.com/spigell/jobapply-dashboard/internal/matchapi"
	"github.com/spigell/jobapply-dashboard/internal/secrets"
)

const (
	app = "jobapply-dashboard"

	defaultRefreshSeconds = 30
	tokenEnv              = "JOBAPPLY_API_TOKEN"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Serve     ServeConfig     `mapstructure:"serve"`
	LogFile   string          `mapstructure:"log-file"`
}

type APIConfig struct {
	BaseURL   string        `mapstructure:"base-url"`
	Prefix    string        `mapstructure:"prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user-agent"`
	Token     string        `mapstructure:"token"`
	TokenFile string        `mapstructure:"token-file"`
}

type DashboardConfig struct {
	// RefreshSeconds disables auto refresh when it is not a positive number.
	RefreshSeconds float64 `mapstructure:"refresh-seconds"`
	Limit          int     `mapstructure:"limit"`
	AutoSubmit     bool    `mapstructure:"auto-submit"`
}

// FilterConfig holds the initial filter input, parsed like user input.
type FilterConfig struct {
	Source   string `mapstructure:"source"`
	MinScore string `mapstructure:"min-score"`
}

type ServeConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobapply-dashboard is a client for browsing ranked job matches and preparing applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"api.base-url":              "JOBAPPLY_API_BASE",
		"api.token-file":            "JOBAPPLY_API_TOKEN_FILE",
		"dashboard.refresh-seconds": "DASHBOARD_REFRESH_SECONDS",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("api.prefix", "")
	viper.SetDefault("api.timeout", "10s")
	viper.SetDefault("dashboard.refresh-seconds", defaultRefreshSeconds)
	viper.SetDefault("dashboard.limit", matchapi.DefaultLimit)
	viper.SetDefault("serve.addr", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobapply-dashboard.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the matching service (default is http://localhost:8000)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api.base-url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	// variables from .env never override the real environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// newDashboard wires the service client and the dashboard from the config.
func newDashboard(config *Config, logger *zap.Logger) (*dashboard.Dashboard, error) {
	token, err := secrets.LoadOptional(secrets.Source{
		Name:  "api token",
		Value: config.API.Token,
		File:  config.API.TokenFile,
		Env:   tokenEnv,
	})
	if err != nil {
		return nil, err
	}

	client := matchapi.New(logger, matchapi.Config{
		APIURL:    config.API.BaseURL,
		Prefix:    config.API.Prefix,
		Timeout:   config.API.Timeout,
		UserAgent: config.API.UserAgent,
		Token:     token,
	})

	criteria, err := filtering.ParseCriteria(config.Filter.Source, config.Filter.MinScore)
	if err != nil {
		logger.Warn("ignoring the minimum score from the config", zap.Error(err))
	}

	logger.Debug("dashboard is configured",
		zap.String("api_url", client.APIURL),
		zap.String("prefix", client.Prefix),
		zap.Bool("auth", token != ""),
		zap.Stringer("filter", criteria),
	)

	return dashboard.New(client, logger,
		dashboard.WithLimit(config.Dashboard.Limit),
		dashboard.WithAutoSubmit(config.Dashboard.AutoSubmit),
		dashboard.WithCriteria(criteria),
	), nil
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	c := *config
	if c.API.Token != "" {
		c.API.Token = "<redacted>"
	}
	return c
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
