package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Global19-atlassian-net/wayback/internal/build"
	"github.com/Global19-atlassian-net/wayback/internal/config"
	"github.com/Global19-atlassian-net/wayback/internal/liveweb"
	"github.com/Global19-atlassian-net/wayback/internal/metadata"
	"github.com/Global19-atlassian-net/wayback/internal/robotscache"
	"github.com/Global19-atlassian-net/wayback/internal/store"
	"github.com/Global19-atlassian-net/wayback/pkg/retry"
	"github.com/Global19-atlassian-net/wayback/pkg/timeutil"
)

var (
	cfgFile            string
	storeAddr          string
	storeDB            int
	gzipStorage        bool
	migrationPeriod    bool
	userAgent          string
	fetchTimeout       time.Duration
	totalTTL           int
	refreshTTL         int
	notAvailTotalTTL   int
	notAvailRefreshTTL int
	baseDelay          time.Duration
	jitter             time.Duration
	randomSeed         int64
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "robots-cache",
	Short: "Freshness layer for the robots-exclusion cache.",
	Long: `robots-cache maintains the store-backed robots.txt cache that the
replay exclusion filter consults. Cached entries are served even when
stale; entries past their refresh age are queued for background refresh
instead of blocking the caller.

The lookup command resolves robots rules through the cache; the refresh
command forces live re-fetches, paced per host.`,
	Version: build.FullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /etc/wayback/robots-cache.json)")
	rootCmd.PersistentFlags().StringVar(&storeAddr, "store-addr", "", "address of the key-value store (host:port)")
	rootCmd.PersistentFlags().IntVar(&storeDB, "store-db", 0, "store database index")
	rootCmd.PersistentFlags().BoolVar(&gzipStorage, "gzip", false, "gzip robots payloads before storing")
	rootCmd.PersistentFlags().BoolVar(&migrationPeriod, "migration-period", false, "do not trust legacy generic-error tokens during the cut-over window")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for live fetches")
	rootCmd.PersistentFlags().DurationVar(&fetchTimeout, "timeout", 0, "timeout for a single live fetch")
	rootCmd.PersistentFlags().IntVar(&totalTTL, "total-ttl", 0, "hard lifetime of a successful entry in seconds")
	rootCmd.PersistentFlags().IntVar(&refreshTTL, "refresh-ttl", 0, "refresh age of a successful entry in seconds")
	rootCmd.PersistentFlags().IntVar(&notAvailTotalTTL, "notavail-total-ttl", 0, "hard lifetime of a failure entry in seconds")
	rootCmd.PersistentFlags().IntVar(&notAvailRefreshTTL, "notavail-refresh-ttl", 0, "refresh age of a failure entry in seconds")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "minimum delay between refreshes against the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to per-host delays")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
}

// InitConfig builds the effective configuration from the config file or
// from CLI flags.
func InitConfig() config.Config {
	cfg, err := InitConfigWithError()
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError builds the effective configuration, returning any
// errors. This makes it easier to test error cases.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	// Build config from CLI flags using the With... functions with method chaining
	configBuilder := config.WithDefault()

	if storeAddr != "" {
		configBuilder = configBuilder.WithStoreAddr(storeAddr)
	}
	if storeDB != 0 {
		configBuilder = configBuilder.WithStoreDB(storeDB)
	}
	if gzipStorage {
		configBuilder = configBuilder.WithGzipStorage(true)
	}
	if migrationPeriod {
		configBuilder = configBuilder.WithMigrationPeriodActive(true)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if fetchTimeout > 0 {
		configBuilder = configBuilder.WithFetchTimeout(fetchTimeout)
	}
	if totalTTL > 0 {
		configBuilder = configBuilder.WithTotalTTL(totalTTL)
	}
	if refreshTTL > 0 {
		configBuilder = configBuilder.WithRefreshTTL(refreshTTL)
	}
	if notAvailTotalTTL > 0 {
		configBuilder = configBuilder.WithNotAvailTotalTTL(notAvailTotalTTL)
	}
	if notAvailRefreshTTL > 0 {
		configBuilder = configBuilder.WithNotAvailRefreshTTL(notAvailRefreshTTL)
	}
	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildCache wires the cache against the real store and live fetcher.
// The returned store must be closed by the caller.
func buildCache(cfg config.Config) (robotscache.Cache, *store.RedisStore) {
	recorder := metadata.NewRecorder("cli")

	retryParam := retry.NewRetryParam(
		cfg.BaseDelay(),
		cfg.Jitter(),
		cfg.RandomSeed(),
		cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			cfg.BackoffInitialDuration(),
			cfg.BackoffMultiplier(),
			cfg.BackoffMaxDuration(),
		),
	)

	valueStore := store.NewRedisStore(cfg.StoreAddr(), cfg.StoreDB(), retryParam)
	reader := liveweb.NewHttpLiveWeb(&recorder, cfg.UserAgent(), cfg.FetchTimeout())
	cache := robotscache.NewCache(cfg, valueStore, &reader, &recorder)

	return cache, valueStore
}

// ResetFlags restores all flag values to their defaults.
// This is primarily useful for testing.
func ResetFlags() {
	cfgFile = ""
	storeAddr = ""
	storeDB = 0
	gzipStorage = false
	migrationPeriod = false
	userAgent = ""
	fetchTimeout = 0
	totalTTL = 0
	refreshTTL = 0
	notAvailTotalTTL = 0
	notAvailRefreshTTL = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
}
