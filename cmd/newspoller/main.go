// Command newspoller runs the news poller service: it pulls
// every configured RSS feed on a fixed interval, strips HTML, filters for
// crypto relevance, deduplicates by article fingerprint, and publishes to
// raw_news_data. Bootstrap uses signal.NotifyContext for graceful shutdown,
// cobra for the command tree, and zerolog for structured logging.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/config"
	"github.com/cryptoops/sentipipe/internal/logging"
	"github.com/cryptoops/sentipipe/internal/metrics"
	"github.com/cryptoops/sentipipe/internal/news"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "newspoller",
		Short:        "Poll crypto news feeds and publish relevant articles",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx)
		},
	}

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logging.Init("newspoller", "info", logging.AutoPretty())

	vals, err := config.LoadAll(config.BrokerProfile, config.NewsProfile, config.PipelineProfile, config.MetricsProfile)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	reg.StartServer(vals.String("METRICS_PORT"))

	brokerClient, err := broker.Dial(ctx, broker.Config{
		Host: vals.String("BROKER_HOST"),
		Port: vals.Int("BROKER_PORT"),
		User: vals.String("BROKER_USER"),
		Pass: vals.String("BROKER_PASS"),
	})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer brokerClient.Close()

	feeds, err := parseFeeds(vals.String("NEWS_FEEDS"))
	if err != nil {
		return err
	}

	poller := &news.Poller{
		Feeds:        feeds,
		Parser:       news.NewGofeedParser(),
		Publisher:    brokerClient,
		RecentSeen:   news.NewRecentSeen(0, 0),
		PollInterval: time.Duration(vals.Int("NEWS_POLL_INTERVAL")) * time.Second,
		Pacer:        rate.NewLimiter(rate.Every(time.Second), 1),
	}

	log.Info().Int("feeds", len(feeds)).Msg("newspoller starting")
	return poller.Run(ctx)
}

// parseFeeds decodes NEWS_FEEDS ("source=url,source=url,...") into the
// poller's FeedSource list.
func parseFeeds(raw string) ([]news.FeedSource, error) {
	var feeds []news.FeedSource
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("malformed NEWS_FEEDS entry %q, want source=url", entry)
		}
		feeds = append(feeds, news.FeedSource{Source: parts[0], URL: parts[1]})
	}
	if len(feeds) == 0 {
		return nil, fmt.Errorf("NEWS_FEEDS resolved to zero feeds")
	}
	return feeds, nil
}

