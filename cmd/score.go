package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/ai"
	"github.com/spigell/bidscout/internal/ai/cache"
	"github.com/spigell/bidscout/internal/ai/gemini"
	"github.com/spigell/bidscout/internal/engine"
	"github.com/spigell/bidscout/internal/filtering"
	logging "github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/procurement"
	"github.com/spigell/bidscout/internal/secrets"
)

const (
	PromptReportByVerdict     = "Report by verdict"
	PromptReportByTier        = "Report by relevance tier"
	PromptInspect             = "Inspect an opportunity"
	PromptAppendToExcludeFile = "Append no-bid opportunities to exclude file"
	PromptEvaluationsToFile   = "Dump evaluations to file"
	PromptExit                = "Exit"
	PromptBack                = "back"
)

var errExit = errors.New("exit requested")

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Evaluate the opportunities of a workspace file against its organization",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("input", "i", "", "workspace file with the organization and opportunities (yaml or json)")
	scoreCmd.Flags().StringP("exclude-file", "e", "", "special file with opportunities to exclude. Default is unset.")
	scoreCmd.Flags().BoolP("non-interactive", "n", false, "print the report by verdict and exit without the menu")

	viper.BindPFlag("input", scoreCmd.Flags().Lookup("input"))
	viper.BindPFlag("exclude-file", scoreCmd.Flags().Lookup("exclude-file"))
}

// score is the main command for the cli.
func score(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logging.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the bidscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if strings.TrimSpace(config.Input) == "" {
		logger.Fatal("workspace file is required", zap.String("hint", "set --input or the 'input' key in the configuration file"))
	}

	workspace, err := procurement.LoadWorkspace(config.Input)
	if err != nil {
		logger.Fatal("loading workspace", zap.Error(err))
	}

	opportunities := workspace.List()
	logger.Info("loaded workspace",
		zap.String("organization", workspace.Organization.ID),
		zap.Int("opportunities", opportunities.Len()),
	)

	filtered, err := prepareFilters(config, logger).RunFilters(ctx, opportunities)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if filtered.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no opportunities left after filters"))
		return
	}

	oracle, err := prepareOracle(ctx, config, logger)
	if err != nil {
		logger.Warn("skipping semantic similarity", zap.Error(err))
	}

	eng := engine.New(engine.Config{Oracle: oracle, Concurrency: config.Concurrency, Logger: logger})
	evals, err := eng.EvaluateBatch(ctx, workspace.Organization, filtered.Items, engine.Options{
		RelevanceWeights: config.Weights.Relevance,
		RiskWeights:      config.Weights.Risk,
	})
	if err != nil {
		logger.Fatal("evaluating opportunities", zap.Error(err))
	}

	kept, step := filtering.MinimumRelevance(evals, config.Filters.MinimumRelevance)
	logger.Info("filter step",
		zap.String("name", "minimum_relevance"),
		zap.Int("initial", step.Initial),
		zap.Int("dropped", step.Dropped),
		zap.Int("left", step.Left),
	)

	results := &engine.Evaluations{Items: kept}
	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no opportunities reached the minimum relevance"))
		return
	}

	for verdict, entries := range results.ReportByVerdict() {
		logger.Info("evaluated opportunities", zap.String("verdict", string(verdict)), zap.Int("count", len(entries)))
	}

	if nonInteractive, _ := cmd.Flags().GetBool("non-interactive"); nonInteractive {
		if err := handleAction(PromptReportByVerdict, logger, config, results, filtered); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := menu(config).Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, config, results, filtered); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func menu(config *Config) *promptui.Select {
	items := []string{PromptReportByVerdict, PromptReportByTier, PromptInspect}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	items = append(items, PromptEvaluationsToFile, PromptExit)

	return &promptui.Select{
		Label: "What next?",
		Items: items,
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, results *engine.Evaluations, opportunities *procurement.Opportunities) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByVerdict:
		pretty, _ := json.MarshalIndent(results.ReportByVerdict(), "", "  ")
		logger.Info(string(pretty), zap.Int("opportunities count", results.Len()))
		return nil
	case PromptReportByTier:
		pretty, _ := json.MarshalIndent(results.ReportByTier(), "", "  ")
		logger.Info(string(pretty), zap.Int("opportunities count", results.Len()))
		return nil
	case PromptInspect:
		return inspect(logger, results)
	case PromptAppendToExcludeFile:
		return appendNoBids(logger, config.ExcludeFile, results, opportunities)
	case PromptEvaluationsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func inspect(logger *zap.Logger, results *engine.Evaluations) error {
	for {
		items := make([]string, 0, results.Len()+1)
		for _, eval := range results.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %.2f",
				eval.OpportunityID, eval.Title, eval.Recommendation.Verdict, eval.Relevance.OverallScore,
			))
		}

		opportunityPrompt := promptui.Select{
			Label: "Choose an opportunity and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		_, selected, err := opportunityPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		for _, eval := range results.Items {
			if eval.OpportunityID == id {
				pretty, _ := json.MarshalIndent(eval, "", "  ")
				logger.Info(string(pretty))
			}
		}
	}
}

func appendNoBids(logger *zap.Logger, excludeFile string, results *engine.Evaluations, opportunities *procurement.Opportunities) error {
	noBids := &procurement.Opportunities{}
	for _, eval := range results.Items {
		if eval.Recommendation.Verdict != procurement.VerdictNoBid {
			continue
		}
		if opp := opportunities.FindByID(eval.OpportunityID); opp != nil {
			noBids.Items = append(noBids.Items, opp)
		}
	}
	if noBids.Len() == 0 {
		logger.Info("nothing to append", zap.String("reason", "no opportunity got a no_bid verdict"))
		return nil
	}

	excluded, err := procurement.GetExcludedFromFile(excludeFile)
	if err != nil {
		return err
	}
	excluded.Append(noBids.ToExcluded(time.Now()))

	if err := excluded.ToFile(excludeFile); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("count", noBids.Len()))
	return nil
}

func prepareFilters(config *Config, logger *zap.Logger) *filtering.Filtering {
	steps := []filtering.Filter{
		filtering.NewStatus(config.Filters.Statuses),
		filtering.NewExpired(time.Now),
		filtering.NewExcludedAgencies(config.Filters.Agencies),
		filtering.NewExcludeFile(config.ExcludeFile),
	}

	f := filtering.New(steps, logger)
	if !config.Filters.SkipExpired {
		f.DisableByName("expired", "filters.skip-expired is false")
	}
	for _, status := range f.Describe() {
		logger.Debug("filter configured",
			zap.String("filter", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
	return f
}

// prepareOracle builds the Gemini similarity oracle, cached in Redis when a
// redis url is configured. A nil oracle leaves the semantic component unavailable.
func prepareOracle(ctx context.Context, config *Config, logger *zap.Logger) (ai.SimilarityOracle, error) {
	cfg := config.AI
	if !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, BIDSCOUT_GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logging.WithCommonFields(logger, "gemini", cfg.Gemini.Model).
		With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	var oracle ai.SimilarityOracle = gemini.NewOracle(generator, genLogger, cfg.Gemini.MaxLogLength)

	if config.Redis.URL == "" {
		return oracle, nil
	}

	client, err := cache.Connect(ctx, config.Redis.URL)
	if err != nil {
		logger.Warn("similarity cache disabled", zap.Error(err))
		return oracle, nil
	}
	return cache.New(client, oracle, cfg.Cache.TTL, logger), nil
}
