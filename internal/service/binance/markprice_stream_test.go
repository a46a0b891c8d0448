package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarkPriceServer(t *testing.T, frames ...string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestMarkPriceStreamAppliesUpdates(t *testing.T) {
	url := newMarkPriceServer(t,
		`[{"e":"markPriceUpdate","s":"BTCUSDT","p":"67000.10"},{"e":"markPriceUpdate","s":"SOLUSDT","p":"bad"}]`,
		`{"e":"markPriceUpdate","s":"ETHUSDT","p":"3100.5"}`,
	)
	s := NewMarkPriceStream(url, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := s.MarkPrice("ETHUSDT")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	p, ok := s.MarkPrice("BTCUSDT")
	assert.True(t, ok)
	assert.Equal(t, 67000.1, p)
	_, ok = s.MarkPrice("SOLUSDT")
	assert.False(t, ok)
	assert.True(t, s.IsConnected())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on cancel")
	}
	assert.False(t, s.IsConnected())
}

type stubStream struct {
	prices map[string]float64
	down   bool
}

func (s *stubStream) Connect(context.Context) error { return nil }
func (s *stubStream) Run(context.Context) error     { return nil }
func (s *stubStream) Close() error                  { return nil }
func (s *stubStream) IsConnected() bool             { return !s.down }
func (s *stubStream) MarkPrice(symbol string) (float64, bool) {
	p, ok := s.prices[symbol]
	return p, ok
}

type stubREST struct {
	price float64
	err   error
	calls int
}

func (s *stubREST) LastPrice(context.Context, string) (float64, error) {
	s.calls++
	return s.price, s.err
}

func TestPriceResolverPrefersStream(t *testing.T) {
	rest := &stubREST{price: 1}
	r := NewPriceResolver(&stubStream{prices: map[string]float64{"BTCUSDT": 65000}}, rest)

	p, err := r.LastPrice(context.Background(), "btcusdt")
	require.NoError(t, err)
	assert.Equal(t, 65000.0, p)
	assert.Zero(t, rest.calls)

	p, err = r.LastPrice(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
	assert.Equal(t, 1, rest.calls)
}

func TestPriceResolverWithoutStream(t *testing.T) {
	boom := errors.New("down")
	r := NewPriceResolver(nil, &stubREST{err: boom})
	_, err := r.LastPrice(context.Background(), "SOLUSDT")
	assert.ErrorIs(t, err, boom)
}

func TestPriceResolverSkipsDisconnectedStream(t *testing.T) {
	rest := &stubREST{price: 150}
	r := NewPriceResolver(&stubStream{prices: map[string]float64{"SOLUSDT": 100}, down: true}, rest)

	p, err := r.LastPrice(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 150.0, p)
	assert.Equal(t, 1, rest.calls)
}

func TestPriceResolverIgnoresBookAfterClose(t *testing.T) {
	s := NewMarkPriceStream("ws://127.0.0.1:0", time.Second, nil)
	s.connected.Store(true)
	s.apply([]markPriceUpdate{{Event: "markPriceUpdate", Symbol: "SOLUSDT", Price: "100"}})

	rest := &stubREST{price: 150}
	r := NewPriceResolver(s, rest)

	p, err := r.LastPrice(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p)

	require.NoError(t, s.Close())
	p, err = r.LastPrice(context.Background(), "SOLUSDT")
	require.NoError(t, err)
	assert.Equal(t, 150.0, p)
	assert.Equal(t, 1, rest.calls)
}
