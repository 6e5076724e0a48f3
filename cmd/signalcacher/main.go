// Command signalcacher runs the signal cacher service: it
// consumes sentiment_signals_queue, upserts the latest signal per pair into
// sentiment:{pair}, and pushes a bounded history entry onto
// sentiment_history:{pair}.
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
	"github.com/cryptoops/sentipipe/internal/cache"
	"github.com/cryptoops/sentipipe/internal/config"
	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/logging"
	"github.com/cryptoops/sentipipe/internal/metrics"
	"github.com/cryptoops/sentipipe/internal/schema"
	"github.com/cryptoops/sentipipe/internal/signalcache"
)

const signalCacherPrefetch = 10

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "signalcacher",
		Short:        "Cache the latest sentiment signal and bounded history per pair",
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
	logging.Init("signalcacher", "info", logging.AutoPretty())

	vals, err := config.LoadAll(config.BrokerProfile, config.CacheProfile, config.PipelineProfile, config.MetricsProfile)
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

	cacheClient, err := cache.New(ctx, cache.Config{
		Host: vals.String("CACHE_HOST"),
		Port: vals.Int("CACHE_PORT"),
	})
	if err != nil {
		return fmt.Errorf("dial cache: %w", err)
	}
	defer cacheClient.Close()

	cacher := &signalcache.Cacher{
		Cache: cacheClient,
		TTL:   time.Duration(vals.Int("SIGNAL_CACHE_TTL")) * time.Second,
	}
	if err := cacher.Ping(ctx); err != nil {
		return err
	}

	handler := schema.SafeMessageConsumer(schema.ValidateSentimentSignal, func(ctx context.Context, msg domain.SentimentSignalMessage) error {
		if err := cacher.Process(ctx, msg); err != nil {
			reg.RecordError("signalcacher", "cache")
			return err
		}
		reg.RecordProcessed("signalcacher")
		if msg.FallbackUsed {
			reg.RecordFallbackUsed(msg.Model)
		}
		return nil
	})

	log.Info().Msg("signalcacher starting")
	return brokerClient.Consume(ctx, "sentiment_signals_queue", signalCacherPrefetch, handler)
}

