package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cryptoops/sentipipe/internal/domain"
)

// KrakenOHLCStream implements ExchangeStream over a single shared Kraken
// public WebSocket connection, subscribed to the ohlc channel for every
// configured pair: a gorilla/websocket dialer with a handshake timeout, a
// background message loop, a ping loop for connection health, and a
// reconnect signal channel on read failure.
type KrakenOHLCStream struct {
	BaseURL   string
	Pairs     []string
	Timeframe string // minutes, e.g. "5"

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	pairCh map[string]chan domain.Candle
	errCh  chan error
	done   chan struct{}
}

func NewKrakenOHLCStream(baseURL string, pairs []string, timeframe string) *KrakenOHLCStream {
	if baseURL == "" {
		baseURL = "wss://ws.kraken.com"
	}
	pairCh := make(map[string]chan domain.Candle, len(pairs))
	for _, p := range pairs {
		pairCh[p] = make(chan domain.Candle, 16)
	}
	return &KrakenOHLCStream{
		BaseURL:   baseURL,
		Pairs:     pairs,
		Timeframe: timeframe,
		pairCh:    pairCh,
		errCh:     make(chan error, 1),
		done:      make(chan struct{}),
	}
}

func (k *KrakenOHLCStream) ensureConnected(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.connected {
		return nil
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 30 * time.Second

	conn, _, err := dialer.DialContext(ctx, k.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("kraken ws dial: %w", err)
	}
	k.conn = conn
	k.connected = true

	sub := krakenSubscribeRequest{
		Event: "subscribe",
		Pair:  toKrakenPairs(k.Pairs),
		Subscription: krakenSubscription{
			Name:     "ohlc",
			Interval: intervalMinutes(k.Timeframe),
		},
	}
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("send subscription: %w", err)
	}

	go k.messageLoop()
	go k.pingLoop()

	log.Info().Strs("pairs", k.Pairs).Str("url", k.BaseURL).Msg("kraken ohlc stream connected")
	return nil
}

func (k *KrakenOHLCStream) messageLoop() {
	for {
		k.mu.Lock()
		conn := k.conn
		k.mu.Unlock()
		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			k.fail(fmt.Errorf("kraken ws read: %w", err))
			return
		}

		candle, pair, ok := decodeKrakenOHLC(data, k.Timeframe)
		if !ok {
			continue
		}

		k.mu.Lock()
		ch, known := k.pairCh[pair]
		k.mu.Unlock()
		if !known {
			continue
		}
		select {
		case ch <- candle:
		default:
			log.Warn().Str("pair", pair).Msg("kraken ohlc channel full, dropping stale candle")
		}
	}
}

func (k *KrakenOHLCStream) pingLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			k.mu.Lock()
			conn := k.conn
			k.mu.Unlock()
			if conn == nil {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				k.fail(fmt.Errorf("kraken ws ping: %w", err))
				return
			}
		}
	}
}

func (k *KrakenOHLCStream) fail(err error) {
	k.mu.Lock()
	if k.conn != nil {
		k.conn.Close()
	}
	k.conn = nil
	k.connected = false
	k.mu.Unlock()

	select {
	case k.errCh <- err:
	default:
	}
}

// NextCandle blocks for the next OHLC update on pair, (re)connecting lazily.
func (k *KrakenOHLCStream) NextCandle(ctx context.Context, pair string) (domain.Candle, error) {
	if err := k.ensureConnected(ctx); err != nil {
		return domain.Candle{}, err
	}

	k.mu.Lock()
	ch := k.pairCh[pair]
	k.mu.Unlock()

	select {
	case <-ctx.Done():
		return domain.Candle{}, ctx.Err()
	case err := <-k.errCh:
		return domain.Candle{}, err
	case candle := <-ch:
		return candle, nil
	}
}

func (k *KrakenOHLCStream) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	select {
	case <-k.done:
	default:
		close(k.done)
	}
	if k.conn == nil {
		return nil
	}
	err := k.conn.Close()
	k.conn = nil
	k.connected = false
	return err
}

type krakenSubscription struct {
	Name     string `json:"name"`
	Interval int    `json:"interval,omitempty"`
}

type krakenSubscribeRequest struct {
	Event        string              `json:"event"`
	Pair         []string            `json:"pair"`
	Subscription krakenSubscription  `json:"subscription"`
}

func intervalMinutes(timeframe string) int {
	n, err := strconv.Atoi(timeframe)
	if err != nil || n <= 0 {
		return 5
	}
	return n
}

// toKrakenPairs rewrites "BTC/USD" into Kraken's "XBT/USD"-style wire pairs.
// Kraken renames bitcoin to XBT on the wire; every other symbol passes
// through unchanged.
func toKrakenPairs(pairs []string) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p
		if len(p) >= 4 && p[:4] == "BTC/" {
			out[i] = "XBT/" + p[4:]
		}
	}
	return out
}

// decodeKrakenOHLC parses one ohlc channel array message:
// [channelID, [time, etime, open, high, low, close, vwap, volume, count], "ohlc-N", pair]
func decodeKrakenOHLC(data []byte, timeframe string) (domain.Candle, string, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil || len(arr) < 4 {
		return domain.Candle{}, "", false
	}

	var rawFields []json.RawMessage
	if err := json.Unmarshal(arr[1], &rawFields); err != nil || len(rawFields) < 8 {
		return domain.Candle{}, "", false
	}
	fields := make([]string, 8)
	for i := range fields {
		if err := json.Unmarshal(rawFields[i], &fields[i]); err != nil {
			return domain.Candle{}, "", false
		}
	}

	var pair string
	if err := json.Unmarshal(arr[len(arr)-1], &pair); err != nil {
		return domain.Candle{}, "", false
	}
	pair = fromKrakenPair(pair)

	etime, err1 := strconv.ParseFloat(fields[1], 64)
	open, err2 := strconv.ParseFloat(fields[2], 64)
	high, err3 := strconv.ParseFloat(fields[3], 64)
	low, err4 := strconv.ParseFloat(fields[4], 64)
	closePrice, err5 := strconv.ParseFloat(fields[5], 64)
	volume, err6 := strconv.ParseFloat(fields[7], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return domain.Candle{}, "", false
	}
	for _, v := range []float64{etime, open, high, low, closePrice, volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Candle{}, "", false
		}
	}

	return domain.Candle{
		Pair:        pair,
		Timeframe:   timeframe,
		TimestampMS: int64(etime * 1000),
		Open:        open,
		High:        high,
		Low:         low,
		Close:       closePrice,
		Volume:      volume,
	}, pair, true
}

func fromKrakenPair(wire string) string {
	if len(wire) >= 4 && wire[:4] == "XBT/" {
		return "BTC/" + wire[4:]
	}
	return wire
}
