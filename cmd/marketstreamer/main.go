// Command marketstreamer runs the market streamer service: one
// cooperative task per configured pair over a shared exchange connection,
// publishing only strictly-newer candles to raw_market_data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/config"
	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/logging"
	"github.com/cryptoops/sentipipe/internal/market"
	"github.com/cryptoops/sentipipe/internal/metrics"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "marketstreamer",
		Short:        "Stream exchange candles and publish raw market data",
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
	logging.Init("marketstreamer", "info", logging.AutoPretty())

	vals, err := config.LoadAll(config.BrokerProfile, config.PipelineProfile, config.ExchangeProfile(), config.MetricsProfile)
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

	stream := market.NewKrakenOHLCStream(vals.String("EXCHANGE_WS_URL"), pairs, timeframeMinutes(vals.String("CANDLE_TIMEFRAME")))

	streamer := &market.Streamer{
		Pairs:     pairs,
		Stream:    stream,
		Publisher: brokerClient,
	}

	log.Info().Strs("pairs", pairs).Msg("marketstreamer starting")
	return streamer.Run(ctx)
}

// timeframeMinutes converts a "1m"/"5m" style CANDLE_TIMEFRAME into the
// Kraken subscription interval string. Anything unrecognized passes through
// unchanged; NewKrakenOHLCStream's interval parsing falls back to 5.
func timeframeMinutes(tf string) string {
	switch tf {
	case "1m", "1":
		return "1"
	case "5m", "5":
		return "5"
	case "15m", "15":
		return "15"
	case "1h", "60":
		return "60"
	default:
		return tf
	}
}

