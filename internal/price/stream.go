package price

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// StreamConfig configures the CEX ticker stream.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the per-message read deadline.
	ReadTimeout time.Duration
	// StaleAfter is how long a cached tick stays usable.
	StaleAfter time.Duration
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		StaleAfter:        30 * time.Second,
	}
}

type tick struct {
	price float64
	at    time.Time
}

// Stream keeps a live cache of CEX ticker prices over a websocket feed.
// The REST client remains the source of truth; the stream only lets a cycle
// skip the REST round trip when a fresh tick is already in hand.
type Stream struct {
	endpoint string
	symbols  map[string]string // stream symbol (upper) -> token
	config   StreamConfig
	logger   *slog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup

	ticks   map[string]tick // keyed by token
	ticksMu sync.RWMutex
	now     func() time.Time
}

// NewStream connects to a combined miniTicker endpoint and starts reading.
// tokens maps token symbols to their stream pair (e.g. "BNB" -> "bnbusdt").
func NewStream(ctx context.Context, endpoint string, tokens map[string]string, config *StreamConfig, logger *slog.Logger) (*Stream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	symbols := make(map[string]string, len(tokens))
	var streams []string
	for token, pair := range tokens {
		symbols[strings.ToUpper(pair)] = token
		streams = append(streams, strings.ToLower(pair)+"@miniTicker")
	}

	s := &Stream{
		endpoint: fmt.Sprintf("%s/stream?streams=%s", strings.TrimRight(endpoint, "/"), strings.Join(streams, "/")),
		symbols:  symbols,
		config:   cfg,
		logger:   logger,
		done:     make(chan struct{}),
		ticks:    make(map[string]tick),
		now:      time.Now,
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

func (s *Stream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	s.conn = conn
	return nil
}

// Latest returns the cached price for a token and whether it is fresh enough
// to use.
func (s *Stream) Latest(token string) (float64, bool) {
	s.ticksMu.RLock()
	t, ok := s.ticks[token]
	s.ticksMu.RUnlock()

	if !ok || s.now().Sub(t.at) > s.config.StaleAfter {
		return 0, false
	}
	return t.price, true
}

// Close shuts the stream down.
func (s *Stream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// readLoop reads ticker frames and reconnects with backoff on failure.
func (s *Stream) readLoop() {
	defer s.wg.Done()

	delay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			if !s.reconnect(delay) {
				return
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Warn("ticker stream read failed, reconnecting", "error", err)
			s.connMu.Lock()
			s.conn.Close()
			s.conn = nil
			s.connMu.Unlock()
			continue
		}

		delay = s.config.ReconnectDelay
		s.handleMessage(message)
	}
}

// reconnect waits out the backoff and re-dials. Returns false on shutdown.
func (s *Stream) reconnect(delay time.Duration) bool {
	select {
	case <-s.done:
		return false
	case <-time.After(delay):
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		s.logger.Warn("ticker stream reconnect failed", "error", err)
	}
	return true
}

type streamFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		Symbol string `json:"s"`
		Close  string `json:"c"`
	} `json:"data"`
}

func (s *Stream) handleMessage(message []byte) {
	var frame streamFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		return
	}

	token, ok := s.symbols[strings.ToUpper(frame.Data.Symbol)]
	if !ok {
		return
	}

	price, err := strconv.ParseFloat(frame.Data.Close, 64)
	if err != nil || price <= 0 {
		return
	}

	s.ticksMu.Lock()
	s.ticks[token] = tick{price: price, at: s.now()}
	s.ticksMu.Unlock()
}
