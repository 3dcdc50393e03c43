package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"IdeaValidator/internal/app"
	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
	"IdeaValidator/internal/logging"
	"IdeaValidator/internal/usecase"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ideavalidator",
		Short:         "Find and rank SaaS opportunities in Reddit discussions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to $IDEA_VALIDATOR_CONFIG)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: error|warn|info|debug")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text|json")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newMatchCommand(),
		newRevenueCommand(),
		newCategoriesCommand(),
		newServeCommand(opts),
		newWatchCommand(opts),
	)
	return root
}

// load reads configuration and builds a logger honouring flag overrides.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cmd.Context(), o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	return cfg, logger, nil
}

func (o *rootOptions) application(cmd *cobra.Command) (*app.Application, *config.Config, error) {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	application, err := app.New(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, cfg, nil
}

func newAnalyzeCommand(opts *rootOptions) *cobra.Command {
	var (
		limit  int
		digest bool
		top    int
	)
	cmd := &cobra.Command{
		Use:   "analyze [category]",
		Short: "Fetch, judge and rank posts for a category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, cfg, err := opts.application(cmd)
			if err != nil {
				return err
			}
			category := ""
			if len(args) == 1 {
				category = args[0]
			}
			if err := application.Connect(cmd.Context()); err != nil {
				return err
			}
			report, err := application.Analyze(cmd.Context(), category, limit)
			if err != nil {
				return err
			}
			if digest {
				if top <= 0 {
					top = cfg.Pipeline.DisplayTop
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), usecase.BuildDigest(report, top))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum posts to analyze (0 uses the configured default)")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the HTML digest sent to Telegram instead of JSON")
	cmd.Flags().IntVar(&top, "top", 0, "opportunities shown in the digest")
	return cmd
}

func newMatchCommand() *cobra.Command {
	var profile domain.UserProfile
	var timeAvailable string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank categories for a founder profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile.TimeAvailable = domain.TimeAvailable(timeAvailable)
			return writeJSON(cmd.OutOrStdout(), usecase.NewMatcher(config.DefaultCatalog()).Rank(profile))
		},
	}
	cmd.Flags().StringVar(&profile.Background, "background", "", "developer|marketer|sales|designer|other")
	cmd.Flags().StringSliceVar(&profile.Interests, "interest", nil, "interest, repeatable")
	cmd.Flags().StringVar(&timeAvailable, "time", "", "nights_weekends|part_time|full_time")
	cmd.Flags().StringVar(&profile.Budget, "budget", "", `budget range such as "1-5k" or "10k+"`)
	return cmd
}

func newRevenueCommand() *cobra.Command {
	var (
		people int
		wtp    string
	)
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Project revenue scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if people < 0 {
				return fmt.Errorf("--people must not be negative")
			}
			return writeJSON(cmd.OutOrStdout(), usecase.EstimateRevenue(domain.RevenueInput{
				PeopleAffected:   people,
				WillingnessToPay: domain.WillingnessToPay(strings.ToLower(strings.TrimSpace(wtp))),
			}))
		},
	}
	cmd.Flags().IntVar(&people, "people", usecase.DefaultPeopleAffected, "people affected")
	cmd.Flags().StringVar(&wtp, "wtp", string(domain.WTPLow), "willingness to pay: high|medium|low|none")
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List known categories with their subreddits and keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := config.DefaultCatalog()
			out := make([]config.Category, 0, len(catalog.Names()))
			for _, name := range catalog.Names() {
				out = append(out, catalog.Lookup(name))
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.application(cmd)
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context())
		},
	}
}

func newWatchCommand(opts *rootOptions) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Analyze watched categories on a cron schedule and publish digests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, _, err := opts.application(cmd)
			if err != nil {
				return err
			}
			return application.Watch(cmd.Context(), now)
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
