package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/spf13/pflag"
)

// Config is the immutable, fully-resolved configuration for the audit
// binary. Values are read once at startup from flags (and DATABASE_URL as a
// fallback for --database-url); nothing here is hot-reloaded.
type Config struct {
	DatabaseURL      string
	PortalClientURLs []string
	Concurrency      int
	MaxAuditRate     float64

	History           bool
	HistoryStrategies []entity.StrategyVariant
	StrategyWeights   map[entity.StrategyVariant]int

	StatsRecordingPeriod time.Duration
	StatsRateWindow      time.Duration
	StatsFilters         []entity.StatsFilter

	// RetentionPeriod/CensusRetentionPeriod are nil when the corresponding
	// retention loop should not start, per spec.md §4.9.
	RetentionPeriod       *time.Duration
	CensusRetentionPeriod *time.Duration

	LogLevel log.Level
	LogJSON  bool
}

// defaultStrategies mirrors the original CLI's implicit default: when no
// --history-strategy flags are given, Sync and Random both run with weight 1.
func defaultStrategies() []entity.StrategyVariant {
	return []entity.StrategyVariant{entity.StrategySync, entity.StrategyRandom}
}

// RegisterFlags adds the audit binary's flags to flags, matching
// the CLI surface in spec.md §6.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("database-url", "", "repository connection string (falls back to $DATABASE_URL)")
	flags.StringSlice("portal-client", nil, "Portal client URL (IPC path or http://...), repeatable")
	flags.Int("concurrency", 4, "worker permit count")
	flags.Float64("max-audit-rate", 4.0, "audits dispatched per second")
	flags.Bool("history", true, "enable History sub-protocol audits")
	flags.StringSlice("history-strategy", nil, "specific strategies to enable; duplicates scale weight")
	flags.Int("sync-strategy-weight", 1, "relative weight for the sync strategy")
	flags.Int("random-strategy-weight", 1, "relative weight for the random strategy")
	flags.Int("latest-strategy-weight", 1, "relative weight for the latest strategy")
	flags.Int("failed-strategy-weight", 1, "relative weight for the failed strategy")
	flags.Int("oldest-unaudited-strategy-weight", 1, "relative weight for the oldest-unaudited strategy")
	flags.Int("stats-recording-period", 300, "stats snapshot tick period, in seconds")
	flags.Int("stats-rate-window", 3600, "stats success-rate window, in seconds")
	flags.Int("retention-period", 0, "audit retention window in days; 0 disables the retention loop")
	flags.Int("census-retention-period", 0, "census retention window in days; 0 disables the census retention loop")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("log-json", false, "output logs in JSON format")
}

// Load resolves a Config from parsed flags, applying the DATABASE_URL
// environment fallback and computing strategy weights from --history-strategy
// repetitions and the --<strategy>-strategy-weight flags.
func Load(flags *pflag.FlagSet) (Config, error) {
	cfg := Config{}

	dbURL, _ := flags.GetString("database-url")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	cfg.DatabaseURL = dbURL

	cfg.PortalClientURLs, _ = flags.GetStringSlice("portal-client")
	cfg.Concurrency, _ = flags.GetInt("concurrency")
	cfg.MaxAuditRate, _ = flags.GetFloat64("max-audit-rate")
	cfg.History, _ = flags.GetBool("history")

	historyStrategyNames, _ := flags.GetStringSlice("history-strategy")
	strategies, weights, err := resolveStrategies(historyStrategyNames)
	if err != nil {
		return Config{}, err
	}
	cfg.HistoryStrategies = strategies
	cfg.StrategyWeights = weights

	for variant, flagName := range strategyWeightFlags() {
		if !flags.Changed(flagName) {
			continue
		}
		if w, err := flags.GetInt(flagName); err == nil && w > 0 {
			if _, enabled := weights[variant]; enabled {
				cfg.StrategyWeights[variant] = w
			}
		}
	}

	statsSeconds, _ := flags.GetInt("stats-recording-period")
	cfg.StatsRecordingPeriod = time.Duration(statsSeconds) * time.Second

	rateWindowSeconds, _ := flags.GetInt("stats-rate-window")
	cfg.StatsRateWindow = time.Duration(rateWindowSeconds) * time.Second
	cfg.StatsFilters = defaultStatsFilters(cfg.HistoryStrategies)

	retentionDays, _ := flags.GetInt("retention-period")
	if retentionDays > 0 {
		d := time.Duration(retentionDays) * 24 * time.Hour
		cfg.RetentionPeriod = &d
	}

	censusRetentionDays, _ := flags.GetInt("census-retention-period")
	if censusRetentionDays > 0 {
		d := time.Duration(censusRetentionDays) * 24 * time.Hour
		cfg.CensusRetentionPeriod = &d
	}

	cfg.LogLevel = log.Level(mustString(flags, "log-level"))
	cfg.LogJSON, _ = flags.GetBool("log-json")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mustString(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}

// resolveStrategies turns the repeated --history-strategy flag into an
// enabled-strategy set with a default weight of 1 each; a strategy named
// more than once scales its default weight by the repeat count, matching
// the source CLI's "duplicates scale weight" behavior. Names are the
// lowercase Strategy.Variant.String() forms.
func resolveStrategies(names []string) ([]entity.StrategyVariant, map[entity.StrategyVariant]int, error) {
	if len(names) == 0 {
		defaults := defaultStrategies()
		weights := make(map[entity.StrategyVariant]int, len(defaults))
		for _, v := range defaults {
			weights[v] = 1
		}
		return defaults, weights, nil
	}

	weights := make(map[entity.StrategyVariant]int)
	var order []entity.StrategyVariant
	for _, name := range names {
		variant, ok := parseStrategyVariant(name)
		if !ok {
			return nil, nil, fmt.Errorf("unknown history strategy %q", name)
		}
		if _, seen := weights[variant]; !seen {
			order = append(order, variant)
		}
		weights[variant]++
	}
	return order, weights, nil
}

func parseStrategyVariant(name string) (entity.StrategyVariant, bool) {
	switch name {
	case "sync":
		return entity.StrategySync, true
	case "random":
		return entity.StrategyRandom, true
	case "latest":
		return entity.StrategyLatest, true
	case "failed":
		return entity.StrategyFailed, true
	case "oldest_unaudited", "oldest-unaudited":
		return entity.StrategyOldestUnaudited, true
	default:
		return 0, false
	}
}

// defaultStatsFilters builds one filter covering all of History, plus one
// scoped to each enabled strategy, matching the per-strategy breakdowns
// operators expect on top of the overall rate.
func defaultStatsFilters(strategies []entity.StrategyVariant) []entity.StatsFilter {
	filters := []entity.StatsFilter{{SubProtocol: entity.SubProtocolHistory}}
	for _, variant := range strategies {
		v := variant
		filters = append(filters, entity.StatsFilter{SubProtocol: entity.SubProtocolHistory, Strategy: &v})
	}
	return filters
}

func strategyWeightFlags() map[entity.StrategyVariant]string {
	return map[entity.StrategyVariant]string{
		entity.StrategySync:            "sync-strategy-weight",
		entity.StrategyRandom:          "random-strategy-weight",
		entity.StrategyLatest:          "latest-strategy-weight",
		entity.StrategyFailed:          "failed-strategy-weight",
		entity.StrategyOldestUnaudited: "oldest-unaudited-strategy-weight",
	}
}

// Validate enforces the fatal-at-startup checks in spec.md §7: a missing
// database URL, or an enabled sub-protocol with zero configured Portal
// clients.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is required (--database-url or $DATABASE_URL)")
	}
	if c.History && len(c.PortalClientURLs) == 0 {
		return fmt.Errorf("at least one --portal-client is required when --history is enabled")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive, got %d", c.Concurrency)
	}
	if c.MaxAuditRate <= 0 {
		return fmt.Errorf("--max-audit-rate must be positive, got %f", c.MaxAuditRate)
	}
	return nil
}
