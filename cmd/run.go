package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/jobapply-dashboard/internal/card"
	"github.com/spigell/jobapply-dashboard/internal/dashboard"
	"github.com/spigell/jobapply-dashboard/internal/logger"
)

const (
	PromptFetch          = "Fetch new jobs"
	PromptMatch          = "Refresh matches"
	PromptFilter         = "Set filter"
	PromptApply          = "Apply to a job"
	PromptStatusLog      = "Show status log"
	PromptReportBySource = "Report by source"
	PromptJobsToFile     = "Dump jobs to file"
	PromptExit           = "Exit"
	PromptBack           = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Choose an action",
	Items: []string{PromptFetch, PromptMatch, PromptFilter, PromptApply, PromptStatusLog, PromptReportBySource, PromptJobsToFile, PromptExit},
	Size:  8,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive menu over the job matches",
	Run: func(_ *cobra.Command, _ []string) {
		run()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("auto-submit", false, "ask the service to submit prepared applications")
	runCmd.Flags().Float64("refresh-seconds", defaultRefreshSeconds, "reload matches every N seconds, 0 disables")

	viper.BindPFlag("dashboard.auto-submit", runCmd.Flags().Lookup("auto-submit"))
	viper.BindPFlag("dashboard.refresh-seconds", runCmd.Flags().Lookup("refresh-seconds"))
}

// run is the main command for the cli.
func run() {
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

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the jobapply-dashboard", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	d, err := newDashboard(config, logger)
	if err != nil {
		logger.Fatal("creating the dashboard",
			zap.Error(err),
			zap.String("hint", "check the api.token-file key or the JOBAPPLY_API_TOKEN_FILE environment variable"),
		)
	}

	if err := d.Match(ctx); err != nil {
		logger.Warn("loading matches", zap.Error(err))
	}

	go d.AutoRefresh(ctx, config.Dashboard.RefreshSeconds)

	for {
		fmt.Println(renderTable(d.Snapshot()))

		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", err.Error()))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, d, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// handleAction runs a menu action. Remote failures end up in the status log,
// only prompt and file errors are returned.
func handleAction(ctx context.Context, action string, d *dashboard.Dashboard, logger *zap.Logger) error {
	switch action {
	case PromptFetch:
		if err := d.Fetch(ctx); err != nil {
			logger.Warn("fetching jobs", zap.Error(err))
		}
		return nil
	case PromptMatch:
		if err := d.Match(ctx); err != nil {
			logger.Warn("loading matches", zap.Error(err))
		}
		return nil
	case PromptFilter:
		return setFilter(ctx, d)
	case PromptApply:
		return chooseAndApply(ctx, d, logger)
	case PromptStatusLog:
		for _, e := range d.Snapshot().Events {
			fmt.Println(e)
		}
		return nil
	case PromptReportBySource:
		visible := d.Snapshot().Visible()
		pretty, _ := json.MarshalIndent(visible.ReportBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", visible.Len()))
		return nil
	case PromptJobsToFile:
		filename, err := d.Snapshot().Visible().DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump jobs to file: %w", err)
		}
		logger.Info("dumping jobs to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func setFilter(ctx context.Context, d *dashboard.Dashboard) error {
	current := d.Snapshot().Criteria

	sourcePrompt := promptui.Prompt{
		Label:   "Source contains",
		Default: current.SourceSubstring,
	}

	source, err := sourcePrompt.Run()
	if err != nil {
		return promptError(err)
	}

	score := ""
	if current.HasMinScore() && current.MinScore != 0 {
		score = strconv.FormatFloat(current.MinScore, 'f', -1, 64)
	}

	scorePrompt := promptui.Prompt{
		Label:   "Minimum score",
		Default: score,
	}

	minScore, err := scorePrompt.Run()
	if err != nil {
		return promptError(err)
	}

	// invalid input is reported in the status log
	_ = d.SetFilterInput(ctx, source, minScore)

	return nil
}

// chooseAndApply asks for a job and prepares the application in the background,
// so several applications can be in flight while the menu stays usable.
func chooseAndApply(ctx context.Context, d *dashboard.Dashboard, base *zap.Logger) error {
	snap := d.Snapshot()

	items := make([]string, 0, len(snap.Cards)+1)
	for _, view := range snap.Cards {
		items = append(items, jobLabel(view))
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, PromptBack),
		Size:  10,
	}

	_, selected, err := jobPrompt.Run()
	if err != nil {
		return promptError(err)
	}

	if selected == PromptBack {
		return nil
	}

	jobID, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
	if err != nil {
		return fmt.Errorf("there is no such job %q: %w", selected, err)
	}

	view, ok := snap.FindCard(jobID)
	if !ok {
		return fmt.Errorf("there is no such job id %d", jobID)
	}

	jobLog := logger.WithJob(base, view.Job.ID, view.Job.Source, view.Job.Title)

	go func() {
		_, err := d.Apply(ctx, jobID)
		switch {
		case errors.Is(err, card.ErrInFlight):
			jobLog.Info("application is already in progress")
		case err != nil:
			jobLog.Warn("application failed, see the status log", zap.Error(err))
		}
	}()

	return nil
}

func jobLabel(view dashboard.CardView) string {
	job := view.Job
	return fmt.Sprintf("%d %s / %s / %s / %s [%s]",
		job.ID, job.Title, job.Company, job.Source, job.ScoreString(), view.State.Status,
	)
}

// promptError treats a cancelled prompt as going back to the menu.
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return nil
	}
	return err
}
