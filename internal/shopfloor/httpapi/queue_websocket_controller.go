package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"shopfloor-console/internal/infra/async"
	"shopfloor-console/internal/infra/httpserver"
	"shopfloor-console/internal/shopfloor/usecases"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS already gates browser traffic at the middleware layer.
		return true
	},
}

// QueueMessage is one websocket frame: the machine's latest snapshot.
type QueueMessage struct {
	Type      string                 `json:"type"`
	Machine   string                 `json:"machine"`
	Timestamp time.Time              `json:"timestamp"`
	Data      usecases.QueueSnapshot `json:"data"`
}

type queueClient struct {
	conn    *websocket.Conn
	machine string
}

// QueueWebSocketController streams queue snapshots to kiosk clients so
// a kiosk can render updates between its own polls.
type QueueWebSocketController struct {
	broker     async.InternalBroker
	queues     usecases.QueueService
	clients    map[*websocket.Conn]*queueClient
	clientsMux sync.RWMutex
	register   chan *queueClient
	unregister chan *websocket.Conn
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewQueueWebSocketController(broker async.InternalBroker, queues usecases.QueueService) *QueueWebSocketController {
	ctx, cancel := context.WithCancel(context.Background())

	wsc := &QueueWebSocketController{
		broker:     broker,
		queues:     queues,
		clients:    make(map[*websocket.Conn]*queueClient),
		register:   make(chan *queueClient),
		unregister: make(chan *websocket.Conn),
		ctx:        ctx,
		cancel:     cancel,
	}

	go wsc.run()

	return wsc
}

var _ httpserver.Controller = (*QueueWebSocketController)(nil)

func (wsc *QueueWebSocketController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /ws/operators/{machine_id_code}/queue", wsc.handleWebSocket())
}

func (wsc *QueueWebSocketController) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine := r.PathValue("machine_id_code")
		if machine == "" {
			http.Error(w, "machine_id_code is required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		slog.Info("kiosk websocket connected",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("machine", machine))

		client := &queueClient{conn: conn, machine: machine}
		wsc.register <- client

		go wsc.handlePingPong(conn)
		go wsc.handleClient(conn)
	}
}

func (wsc *QueueWebSocketController) handleClient(conn *websocket.Conn) {
	defer func() {
		select {
		case <-wsc.ctx.Done():
		default:
			select {
			case wsc.unregister <- conn:
			default:
			}
		}
		conn.Close()
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", slog.String("error", err.Error()))
			} else {
				slog.Debug("websocket connection closed", slog.String("error", err.Error()))
			}
			break
		}
	}
}

func (wsc *QueueWebSocketController) handlePingPong(conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-wsc.ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (wsc *QueueWebSocketController) run() {
	subscription, err := wsc.broker.Subscribe(async.TopicOperatorQueue)
	if err != nil {
		slog.Error("subscribing to queue updates", slog.String("error", err.Error()))
		return
	}
	defer wsc.broker.Unsubscribe(async.TopicOperatorQueue, subscription)

	for {
		select {
		case <-wsc.ctx.Done():
			return

		case client := <-wsc.register:
			wsc.clientsMux.Lock()
			wsc.clients[client.conn] = client
			wsc.clientsMux.Unlock()
			slog.Info("kiosk websocket client registered",
				slog.String("machine", client.machine),
				slog.Int("total_clients", len(wsc.clients)))

			go wsc.sendCurrentSnapshot(client)

		case conn := <-wsc.unregister:
			wsc.clientsMux.Lock()
			if client, ok := wsc.clients[conn]; ok {
				delete(wsc.clients, conn)
				conn.Close()
				slog.Info("kiosk websocket client unregistered",
					slog.String("machine", client.machine),
					slog.Int("total_clients", len(wsc.clients)))
			}
			wsc.clientsMux.Unlock()

		case brokerMsg, open := <-subscription.Receiver:
			if !open {
				return
			}
			if brokerMsg.Event != "queue_updated" {
				continue
			}
			snapshot, ok := brokerMsg.Value.(usecases.QueueSnapshot)
			if !ok {
				continue
			}

			wsc.broadcast(snapshot)
		}
	}
}

func (wsc *QueueWebSocketController) broadcast(snapshot usecases.QueueSnapshot) {
	machine := snapshot.Queue.MachineIDCode
	message := QueueMessage{
		Type:      "queue_snapshot",
		Machine:   machine,
		Timestamp: time.Now().UTC(),
		Data:      snapshot,
	}

	var failed []*websocket.Conn
	wsc.clientsMux.RLock()
	for conn, client := range wsc.clients {
		if client.machine != machine {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(message); err != nil {
			slog.Error("writing to kiosk websocket client",
				slog.String("machine", machine),
				slog.String("error", err.Error()))
			failed = append(failed, conn)
		}
	}
	wsc.clientsMux.RUnlock()

	if len(failed) > 0 {
		wsc.clientsMux.Lock()
		for _, conn := range failed {
			if _, ok := wsc.clients[conn]; ok {
				delete(wsc.clients, conn)
				conn.Close()
			}
		}
		wsc.clientsMux.Unlock()
	}
}

// sendCurrentSnapshot gives a new client something to render before the
// next poll tick lands.
func (wsc *QueueWebSocketController) sendCurrentSnapshot(client *queueClient) {
	snapshot, err := wsc.queues.Queue(context.Background(), client.machine)
	if err != nil {
		slog.Warn("fetching snapshot for new websocket client",
			slog.String("machine", client.machine),
			slog.Any("error", err))
		return
	}

	message := QueueMessage{
		Type:      "queue_snapshot",
		Machine:   client.machine,
		Timestamp: time.Now().UTC(),
		Data:      snapshot,
	}

	client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := client.conn.WriteJSON(message); err != nil {
		slog.Error("sending snapshot to new websocket client",
			slog.String("machine", client.machine),
			slog.String("error", err.Error()))
	}
}

func (wsc *QueueWebSocketController) Shutdown() {
	slog.Info("shutting down queue websocket controller")
	wsc.cancel()

	wsc.clientsMux.Lock()
	for conn := range wsc.clients {
		conn.Close()
	}
	wsc.clientsMux.Unlock()
}
