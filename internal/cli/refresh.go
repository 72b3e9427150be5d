package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Global19-atlassian-net/wayback/internal/robotscache"
	"github.com/Global19-atlassian-net/wayback/pkg/limiter"
	"github.com/Global19-atlassian-net/wayback/pkg/urlutil"
)

var (
	minUpdateInterval int
	cacheFailures     bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [<url>...]",
	Short: "Force live refreshes of cached robots.txt entries.",
	Long: `refresh forces a live re-fetch for each given URL (or each line read
from stdin when no URLs are given), paced per host. Entries younger than
--min-update-interval are skipped without contacting the origin.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := InitConfig()
		cache, valueStore := buildCache(cfg)
		defer valueStore.Close()

		rate := limiter.NewConcurrentRateLimiter()
		rate.SetBaseDelay(cfg.BaseDelay())
		rate.SetJitter(cfg.Jitter())
		rate.SetRandomSeed(cfg.RandomSeed())

		targets := args
		if len(targets) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				if line := scanner.Text(); line != "" {
					targets = append(targets, line)
				}
			}
		}

		ctx := context.Background()
		for _, arg := range targets {
			parsed, err := url.Parse(arg)
			if err != nil || parsed.Host == "" {
				fmt.Fprintf(os.Stderr, "skipping malformed URL %q\n", arg)
				continue
			}

			robotsURL := urlutil.RobotsURL(*parsed)
			host := robotsURL.Hostname()

			if delay := rate.ResolveDelay(host); delay > 0 {
				time.Sleep(delay)
			}
			rate.MarkLastFetchAsNow(host)

			result := cache.ForceRefresh(ctx, robotsURL.String(), minUpdateInterval, cacheFailures)
			printRefreshResult(robotsURL.String(), result)

			if result.Status() >= 500 || result.Status() == 0 {
				rate.Backoff(host)
			} else {
				rate.ResetBackoff(host)
			}
		}
	},
}

func printRefreshResult(target string, result robotscache.RefreshResult) {
	if result.Status() == 0 {
		if _, hadPrior := result.Prior(); hadPrior {
			fmt.Printf("%s: skipped (entry still fresh)\n", target)
		} else {
			fmt.Printf("%s: skipped\n", target)
		}
		return
	}

	changed := "changed"
	if result.SameAsPrior() {
		changed = "unchanged"
	}
	if hash, ok := result.Fingerprint(); ok {
		fmt.Printf("%s: status %d, %s, hash %s\n", target, result.Status(), changed, hash[:12])
		return
	}
	fmt.Printf("%s: status %d, %s\n", target, result.Status(), changed)
}

func init() {
	refreshCmd.Flags().IntVar(&minUpdateInterval, "min-update-interval", 0, "skip entries refreshed within this many seconds")
	refreshCmd.Flags().BoolVar(&cacheFailures, "cache-failures", false, "cache hard failures unconditionally")
	rootCmd.AddCommand(refreshCmd)
}
