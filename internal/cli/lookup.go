package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/Global19-atlassian-net/wayback/internal/robotscache"
	"github.com/Global19-atlassian-net/wayback/pkg/urlutil"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <url>...",
	Short: "Resolve robots.txt rules through the cache.",
	Long: `lookup resolves the robots.txt rules governing each given URL. A cached
entry is served even when stale; a miss falls through to a live fetch
whose outcome is cached before being printed.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := InitConfig()
		cache, valueStore := buildCache(cfg)
		defer valueStore.Close()

		ctx := context.Background()
		failed := false

		for _, arg := range args {
			parsed, err := url.Parse(arg)
			if err != nil || parsed.Host == "" {
				fmt.Fprintf(os.Stderr, "skipping malformed URL %q\n", arg)
				failed = true
				continue
			}

			robotsURL := urlutil.RobotsURL(*parsed)
			rules, lookupErr := cache.Lookup(ctx, robotsURL, 0, false)
			if lookupErr != nil {
				var notAvail *robotscache.NotAvailableError
				if errors.As(lookupErr, &notAvail) {
					fmt.Printf("%s: not available (status %d)\n", robotsURL.String(), notAvail.Status)
				} else {
					fmt.Printf("%s: %s\n", robotsURL.String(), lookupErr.Error())
				}
				failed = true
				continue
			}

			if rules == "" {
				fmt.Printf("%s: no robots.txt (all allowed)\n", robotsURL.String())
				continue
			}
			fmt.Printf("%s: %d bytes of rules\n", robotsURL.String(), len(rules))
			fmt.Println(rules)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
