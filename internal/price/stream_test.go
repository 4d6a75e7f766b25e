package price

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// tickerServer upgrades each connection and sends the given frames.
func tickerServer(t *testing.T, frames []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/stream") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForTick(t *testing.T, s *Stream, token string) float64 {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if p, ok := s.Latest(token); ok {
			return p
		}
		select {
		case <-deadline:
			t.Fatalf("no tick for %s", token)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStream_CachesTicks(t *testing.T) {
	srv := tickerServer(t, []string{
		`{"stream":"bnbusdt@miniTicker","data":{"s":"BNBUSDT","c":"612.5"}}`,
	})
	defer srv.Close()

	s, err := NewStream(context.Background(), wsURL(srv), map[string]string{"BNB": "bnbusdt"}, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	defer s.Close()

	if got := waitForTick(t, s, "BNB"); got != 612.5 {
		t.Errorf("expected 612.5, got %v", got)
	}
}

func TestStream_IgnoresUnknownSymbolsAndBadFrames(t *testing.T) {
	srv := tickerServer(t, []string{
		`not json`,
		`{"stream":"ethusdt@miniTicker","data":{"s":"ETHUSDT","c":"3000"}}`,
		`{"stream":"bnbusdt@miniTicker","data":{"s":"BNBUSDT","c":"garbage"}}`,
		`{"stream":"bnbusdt@miniTicker","data":{"s":"BNBUSDT","c":"600.0"}}`,
	})
	defer srv.Close()

	s, err := NewStream(context.Background(), wsURL(srv), map[string]string{"BNB": "bnbusdt"}, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	defer s.Close()

	if got := waitForTick(t, s, "BNB"); got != 600.0 {
		t.Errorf("expected 600.0, got %v", got)
	}
	if _, ok := s.Latest("ETH"); ok {
		t.Error("unsubscribed token must not be cached")
	}
}

func TestStream_StaleTickNotServed(t *testing.T) {
	srv := tickerServer(t, []string{
		`{"stream":"bnbusdt@miniTicker","data":{"s":"BNBUSDT","c":"612.5"}}`,
	})
	defer srv.Close()

	s, err := NewStream(context.Background(), wsURL(srv), map[string]string{"BNB": "bnbusdt"}, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}
	defer s.Close()

	waitForTick(t, s, "BNB")

	// Age the cached tick past the staleness window.
	s.now = func() time.Time { return time.Now().Add(time.Minute) }
	if _, ok := s.Latest("BNB"); ok {
		t.Error("stale tick must not be served")
	}
}

func TestStream_DialFailure(t *testing.T) {
	_, err := NewStream(context.Background(), "ws://127.0.0.1:1", map[string]string{"BNB": "bnbusdt"}, nil, slog.New(slog.DiscardHandler))
	if err == nil {
		t.Fatal("expected dial error")
	}
}
