package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"PerpScout/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type botServer struct {
	mu       sync.Mutex
	getMe    int
	chatIDs  []string
	texts    []string
	failSend bool
}

func (b *botServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		b.getMe++
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Scout","username":"scout_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if b.failSend {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		b.chatIDs = append(b.chatIDs, r.FormValue("chat_id"))
		b.texts = append(b.texts, r.FormValue("text"))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestNotifier(t *testing.T, b *botServer) *Notifier {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return New(WithEndpoint(srv.URL + "/bot%s/%s"))
}

func TestNotifySendsToNumericAndChannelChats(t *testing.T) {
	b := &botServer{}
	n := newTestNotifier(t, b)

	require.NoError(t, n.Notify(context.Background(), models.NotifierSettings{Token: "123:abc", ChatID: "42"}, "hello"))
	require.NoError(t, n.Notify(context.Background(), models.NotifierSettings{Token: "123:abc", ChatID: "signals"}, "world"))

	assert.Equal(t, 1, b.getMe, "bot client is reused per token")
	assert.Equal(t, []string{"42", "@signals"}, b.chatIDs)
	assert.Equal(t, []string{"hello", "world"}, b.texts)
}

func TestNotifyRequiresSettings(t *testing.T) {
	n := New()
	err := n.Notify(context.Background(), models.NotifierSettings{Token: "x"}, "hello")
	assert.ErrorIs(t, err, models.ErrNotifierNotConfigured)
}

func TestNotifySurfacesAPIError(t *testing.T) {
	b := &botServer{failSend: true}
	n := newTestNotifier(t, b)

	err := n.Notify(context.Background(), models.NotifierSettings{Token: "123:abc", ChatID: "42"}, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}
