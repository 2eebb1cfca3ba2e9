package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The kiosk websocket route sits behind the same metrics and tracing
// middlewares as every other route, so both wrapped writers must keep
// supporting connection hijacking.
func TestMiddlewareChainAllowsWebsocketUpgrade(t *testing.T) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	router := http.NewServeMux()
	router.HandleFunc("GET /ws/echo", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(messageType, payload)
	})

	tracingMiddleware := createTracingMiddleware()
	metricsMiddleware := MetricsMiddleware()
	server := httptest.NewServer(metricsMiddleware(tracingMiddleware(router)))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/echo"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("queue_snapshot")))

	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "queue_snapshot", string(payload))
}

func TestStatusCodeResponseWriterReportsMissingHijacker(t *testing.T) {
	wrapped := &statusCodeResponseWriter{ResponseWriter: httptest.NewRecorder()}

	_, _, err := wrapped.Hijack()
	assert.Error(t, err)
}
