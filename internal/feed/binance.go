// Package feed runs the built-in event producer: a Binance combined-stream
// websocket client that turns ticker and mark-price updates into raw events
// for the two domain processors.
package feed

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cryptohawk/cryptohawk/internal/logger"
	"github.com/cryptohawk/cryptohawk/internal/models"
)

const (
	readTimeout      = 90 * time.Second // Binance pings every ~3 minutes at most
	reconnectBackoff = 2 * time.Second
	maxBackoffSteps  = 5
)

// Sink receives produced events fire-and-forget.
type Sink func(models.RawEvent)

// Feed maintains the websocket connection and converts stream payloads into
// RawEvents. Ticker updates go to the CEX sink, funding updates to the
// MarketStats sink.
type Feed struct {
	wsURL      string
	symbols    []string
	cexSink    Sink
	marketSink Sink
}

// New creates a feed for the given symbols (e.g. BTCUSDT).
func New(wsURL string, symbols []string, cexSink, marketSink Sink) *Feed {
	return &Feed{
		wsURL:      strings.TrimRight(wsURL, "/"),
		symbols:    symbols,
		cexSink:    cexSink,
		marketSink: marketSink,
	}
}

// streamURL builds the combined-stream endpoint: the all-market mini-ticker
// array plus one mark-price stream per symbol.
func (f *Feed) streamURL() string {
	streams := []string{"!miniTicker@arr"}
	for _, sym := range f.symbols {
		streams = append(streams, strings.ToLower(sym)+"@markPrice")
	}
	return f.wsURL + "/stream?streams=" + strings.Join(streams, "/")
}

// Run connects and consumes until ctx is cancelled, reconnecting with linear
// backoff on any read or dial failure.
func (f *Feed) Run(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		if err := f.consume(ctx); err != nil {
			attempt++
			if attempt > maxBackoffSteps {
				attempt = maxBackoffSteps
			}
			delay := reconnectBackoff * time.Duration(attempt)
			logger.Warn("feed: connection lost: %v (reconnecting in %v)", err, delay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
	}
}

func (f *Feed) consume(ctx context.Context) error {
	url := f.streamURL()
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.Info("feed: connected to %s", url)

	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		f.dispatch(raw)
	}
}

type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type miniTicker struct {
	Symbol      string `json:"s"`
	EventTime   int64  `json:"E"`
	ClosePrice  string `json:"c"`
	OpenPrice   string `json:"o"`
	QuoteVolume string `json:"q"`
}

type markPrice struct {
	Symbol      string `json:"s"`
	EventTime   int64  `json:"E"`
	FundingRate string `json:"r"`
}

func (f *Feed) dispatch(raw []byte) {
	var env streamEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Debug("feed: undecodable frame: %v", err)
		return
	}
	switch {
	case env.Stream == "!miniTicker@arr":
		f.handleTickers(env.Data)
	case strings.HasSuffix(env.Stream, "@markPrice"):
		f.handleMarkPrice(env.Data)
	}
}

func (f *Feed) handleTickers(data json.RawMessage) {
	var tickers []miniTicker
	if err := json.Unmarshal(data, &tickers); err != nil {
		logger.Debug("feed: bad mini-ticker payload: %v", err)
		return
	}
	for _, t := range tickers {
		openPrice, err1 := strconv.ParseFloat(t.OpenPrice, 64)
		closePrice, err2 := strconv.ParseFloat(t.ClosePrice, 64)
		quoteVol, err3 := strconv.ParseFloat(t.QuoteVolume, 64)
		if err1 != nil || err2 != nil || err3 != nil || openPrice == 0 {
			continue
		}
		changePerc := (closePrice - openPrice) / openPrice * 100

		f.cexSink(models.RawEvent{
			Category:  models.CategoryCEXTracking,
			EventName: "price_move_" + t.Symbol,
			Asset:     baseAsset(t.Symbol),
			Exchange:  "binance",
			Timestamp: t.EventTime,
			Metrics: map[string]float64{
				models.MetricPriceChangePerc: changePerc,
				models.MetricDailyVolume:     quoteVol,
			},
		})
	}
}

func (f *Feed) handleMarkPrice(data json.RawMessage) {
	var mp markPrice
	if err := json.Unmarshal(data, &mp); err != nil {
		logger.Debug("feed: bad mark-price payload: %v", err)
		return
	}
	rate, err := strconv.ParseFloat(mp.FundingRate, 64)
	if err != nil {
		return
	}
	f.marketSink(models.RawEvent{
		Type:      "top_funding",
		EventName: "funding_" + mp.Symbol,
		Asset:     baseAsset(mp.Symbol),
		Exchange:  "binance",
		Timestamp: mp.EventTime,
		Metrics: map[string]float64{
			models.MetricFundingRate: rate,
		},
	})
}

// baseAsset strips the common quote suffixes so coin filters match producer
// asset symbols like BTC rather than BTCUSDT.
func baseAsset(symbol string) string {
	for _, quote := range []string{"USDT", "USDC", "BUSD", "BTC", "ETH"} {
		if trimmed, ok := strings.CutSuffix(symbol, quote); ok && trimmed != "" {
			return trimmed
		}
	}
	return symbol
}
