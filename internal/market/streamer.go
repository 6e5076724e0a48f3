// Package market implements the market streamer: one cooperative task per
// configured pair, sharing a single exchange connection, each publishing
// only strictly-newer candles to raw_market_data and suppressing
// duplicates via an in-memory last-published-timestamp map.
package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/domain"
)

const queueRawMarket = "raw_market_data"

// ExchangeStream abstracts the exchange's push API: NextCandle blocks until
// the next batch of candles for pair arrives and returns its latest entry,
// or returns an error on a network/exchange failure.
type ExchangeStream interface {
	NextCandle(ctx context.Context, pair string) (domain.Candle, error)
	Close() error
}

// Streamer runs one per-pair task per configured pair concurrently, all
// sharing the single ExchangeStream connection.
type Streamer struct {
	Pairs          []string
	Stream         ExchangeStream
	Publisher      broker.Publisher
	ReconnectDelay time.Duration // default 5s

	mu            sync.Mutex
	lastPublished map[string]int64
}

// Run starts one goroutine per pair and blocks until ctx is cancelled or
// every pair's task exits. Shutdown closes the exchange stream first, then
// returns; the caller is responsible for closing the broker client after
// Run returns.
func (s *Streamer) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.lastPublished == nil {
		s.lastPublished = make(map[string]int64)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, pair := range s.Pairs {
		wg.Add(1)
		go func(pair string) {
			defer wg.Done()
			s.runPair(ctx, pair)
		}(pair)
	}

	<-ctx.Done()
	_ = s.Stream.Close()
	wg.Wait()
	return nil
}

func (s *Streamer) delay() time.Duration {
	if s.ReconnectDelay > 0 {
		return s.ReconnectDelay
	}
	return 5 * time.Second
}

func (s *Streamer) runPair(ctx context.Context, pair string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		candle, err := s.Stream.NextCandle(ctx, pair)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("pair", pair).Msg("market stream error, backing off")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay()):
			}
			continue
		}

		s.mu.Lock()
		last := s.lastPublished[pair]
		s.mu.Unlock()

		if candle.TimestampMS <= last {
			continue
		}

		msg := domain.RawMarketDataMessage{
			Timestamp:   time.Now().UTC(),
			Pair:        candle.Pair,
			Timeframe:   candle.Timeframe,
			TimestampMS: candle.TimestampMS,
			Open:        candle.Open,
			High:        candle.High,
			Low:         candle.Low,
			Close:       candle.Close,
			Volume:      candle.Volume,
		}
		if err := s.Publisher.Publish(ctx, queueRawMarket, msg, true); err != nil {
			log.Error().Err(err).Str("pair", pair).Msg("failed to publish candle")
			continue
		}

		s.mu.Lock()
		s.lastPublished[pair] = candle.TimestampMS
		s.mu.Unlock()
	}
}
