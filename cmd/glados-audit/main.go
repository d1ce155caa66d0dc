package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ethereum/glados/pkg/collator"
	"github.com/ethereum/glados/pkg/config"
	"github.com/ethereum/glados/pkg/engine"
	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
	"github.com/ethereum/glados/pkg/portal"
	"github.com/ethereum/glados/pkg/repository"
	"github.com/ethereum/glados/pkg/repository/migrations"
	"github.com/ethereum/glados/pkg/repository/postgres"
	"github.com/ethereum/glados/pkg/retention"
	"github.com/ethereum/glados/pkg/stats"
	"github.com/ethereum/glados/pkg/strategy"
	"github.com/ethereum/glados/pkg/validator"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "glados-audit",
	Short: "Glados audit core - samples content availability on a Portal network",
	Long: `Glados continuously audits content availability on a peer-to-peer
content-addressable network, validating returned bytes and persisting
structured outcomes for analysis.`,
	Version: Version,
	RunE:    run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"glados-audit version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	config.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "address for the metrics/health HTTP server")

	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().String("database-url", "", "repository connection string (falls back to $DATABASE_URL)")
}

var auditCmd = &cobra.Command{
	Use:   "audit <sub-protocol> <content-key> <portal-client>",
	Short: "Run a single audit for a specific content key against one Portal client",
	Long: `Run a single, one-off audit for a previously-seen content key against a
single Portal client, outside of the continuous strategy pipeline. Useful for
reproducing or manually re-checking a specific audit result.`,
	Args: cobra.ExactArgs(3),
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	subProtocolArg, contentKeyHex, portalClientURL := args[0], args[1], args[2]

	subProtocol, err := parseSubProtocol(subProtocolArg)
	if err != nil {
		return err
	}

	keyBytes, err := hex.DecodeString(strings.TrimPrefix(contentKeyHex, "0x"))
	if err != nil {
		return fmt.Errorf("decode content key: %w", err)
	}
	if _, ok := subProtocol.Kind().DecodeKey(keyBytes); !ok {
		return fmt.Errorf("content key %s is not a recognized %s content type", contentKeyHex, subProtocol)
	}

	databaseURL, _ := cmd.Flags().GetString("database-url")
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return fmt.Errorf("database url is required (--database-url or $DATABASE_URL)")
	}

	log.Init(log.Config{Level: "info", JSONOutput: false})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer store.Close()

	if err := migrations.Up(store.DB()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	var repo repository.Repository = store

	client, err := portal.Dial(ctx, portalClientURL)
	if err != nil {
		return fmt.Errorf("dial portal client: %w", err)
	}

	content, err := repo.UpsertContent(ctx, subProtocol, keyBytes, nil)
	if err != nil {
		return fmt.Errorf("resolve content key: %w", err)
	}

	work := entity.AuditTask{
		Strategy: entity.Strategy{SubProtocol: subProtocol, Variant: entity.StrategyManual},
		Content:  content,
	}

	check := validator.New(repo)
	task := engine.NewTask(repo, client, work, check, log.Logger)
	task.Run(ctx)

	return nil
}

func parseSubProtocol(s string) (entity.SubProtocol, error) {
	switch strings.ToLower(s) {
	case "history":
		return entity.SubProtocolHistory, nil
	case "state":
		return entity.SubProtocolState, nil
	case "beacon":
		return entity.SubProtocolBeacon, nil
	default:
		return 0, fmt.Errorf("unknown sub-protocol %q (want history, state, or beacon)", s)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log.Init(log.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	metrics.SetVersion(Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer store.Close()
	metrics.RegisterComponent("repository", false, "migrating")

	if err := migrations.Up(store.DB()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	metrics.RegisterComponent("repository", true, "ready")

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	go serveMetrics(metricsAddr)

	var repo repository.Repository = store

	var clients *portal.Pool
	if cfg.History && len(cfg.PortalClientURLs) > 0 {
		clients, err = portal.DialAll(ctx, cfg.PortalClientURLs)
		if err != nil {
			return fmt.Errorf("dial portal clients: %w", err)
		}
		metrics.RegisterComponent("portal", true, fmt.Sprintf("%d clients", clients.Len()))
	} else {
		metrics.RegisterComponent("portal", true, "disabled")
	}

	var producers []strategy.Producer
	var triples []collator.Triple
	if cfg.History {
		for _, variant := range cfg.HistoryStrategies {
			s := entity.Strategy{SubProtocol: entity.SubProtocolHistory, Variant: variant}
			producer, err := strategy.New(repo, s)
			if err != nil {
				return fmt.Errorf("build %s strategy: %w", variant, err)
			}
			producers = append(producers, producer)
			triples = append(triples, collator.Triple{
				Strategy: s,
				Weight:   cfg.StrategyWeights[variant],
				Inbound:  producer.Output(),
			})
		}
	}

	coll := collator.New(triples, cfg.Concurrency*2)
	for _, producer := range producers {
		producer.Start()
	}
	coll.Start()

	var pool *engine.Pool
	if clients != nil {
		pool = engine.New(repo, clients, coll.Output(), cfg.Concurrency, cfg.MaxAuditRate)
	}

	statsAgg := stats.New(repo, cfg.StatsFilters, cfg.StatsRecordingPeriod, cfg.StatsRateWindow)
	statsAgg.Start()

	retentionEnforcer := retention.New(repo, cfg.RetentionPeriod, cfg.CensusRetentionPeriod)
	retentionEnforcer.Start()

	gaugeCollector := metrics.NewCollector(repo)
	gaugeCollector.Start()

	log.Logger.Info().
		Int("concurrency", cfg.Concurrency).
		Float64("max_audit_rate", cfg.MaxAuditRate).
		Int("strategies", len(producers)).
		Msg("glados-audit started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if pool != nil {
		poolDone := make(chan struct{})
		go func() {
			pool.Run(ctx)
			close(poolDone)
		}()

		<-sigCh
		log.Logger.Info().Msg("shutting down")
		cancel()
		<-poolDone
	} else {
		<-sigCh
		log.Logger.Info().Msg("shutting down")
		cancel()
	}

	for _, producer := range producers {
		producer.Stop()
	}
	coll.Stop()
	statsAgg.Stop()
	retentionEnforcer.Stop()
	gaugeCollector.Stop()

	log.Logger.Info().Msg("shutdown complete")
	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Logger.Error().Err(err).Msg("metrics server error")
	}
}
