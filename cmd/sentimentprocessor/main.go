// Command sentimentprocessor runs the sentiment processor service: it
// consumes raw_news_data, scores each article through the oracle
// cascade (primary model → keyword fallback → neutral default), matches it
// against configured pairs, and publishes one SentimentSignalMessage per
// match to sentiment_signals_queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/config"
	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/logging"
	"github.com/cryptoops/sentipipe/internal/metrics"
	"github.com/cryptoops/sentipipe/internal/schema"
	"github.com/cryptoops/sentipipe/internal/sentiment"
)

const sentimentProcessorPrefetch = 1

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "sentimentprocessor",
		Short:        "Score raw news articles and publish sentiment signals",
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
	logging.Init("sentimentprocessor", "info", logging.AutoPretty())

	vals, err := config.LoadAll(config.BrokerProfile, config.PipelineProfile, config.OracleProfile, config.MetricsProfile)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	reg.StartServer(vals.String("METRICS_PORT"))

	pairs, invalid := domain.ParsePairs(vals.String("TRADING_PAIRS"))
	if len(invalid) > 0 {
		log.Warn().Strs("invalid_pairs", invalid).Msg("ignoring malformed entries in TRADING_PAIRS")
	}
	if len(pairs) == 0 {
		return fmt.Errorf("TRADING_PAIRS resolved to zero valid pairs")
	}

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

	timeout := time.Duration(vals.Int("ORACLE_TIMEOUT_MS")) * time.Millisecond
	primary := sentiment.NewHTTPOracle(vals.String("ORACLE_PRIMARY_ENDPOINT"), vals.String("ORACLE_PRIMARY_MODEL"), timeout)
	matcher := sentiment.NewPairMatcher(pairs, vals.Bool("FANOUT_GENERAL_CRYPTO"))
	processor := sentiment.NewProcessor(primary, matcher, brokerClient)

	handler := schema.SafeMessageConsumer(schema.ValidateRawNews, func(ctx context.Context, msg domain.RawNewsMessage) error {
		err := processor.Process(ctx, msg)
		if err != nil {
			reg.RecordError("sentimentprocessor", "publish")
			return err
		}
		reg.RecordProcessed("sentimentprocessor")
		return nil
	})

	log.Info().Strs("pairs", pairs).Msg("sentimentprocessor starting")
	return brokerClient.Consume(ctx, "raw_news_data", sentimentProcessorPrefetch, handler)
}

