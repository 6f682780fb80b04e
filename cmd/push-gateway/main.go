package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"storefront/internal/pkg/bootstrap"
	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// push-gateway 把下单产生的 admin-alert 事件实时推送给在线的后台面板。
// 面板通过 /ws 建立 WebSocket 连接，网关消费通知主题并广播。

const (
	serviceName = "push-gateway"
	listenAddr  = ":8088"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var (
	nodeID   = serviceName + "-" + uuid.NewString()[:8]
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
			return true
		},
	}
)

// Hub 维护所有活跃的连接，并负责消息广播
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
			logger.L().Info().Str("node", nodeID).Msg("dashboard client connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			logger.L().Info().Msg("dashboard client disconnected")
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 慢客户端直接踢掉，避免堵塞广播
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Client 是一个 WebSocket 连接的代表
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// 面板不上行业务消息，读循环只维持心跳
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.L().Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// consumeAlerts 消费通知主题，只把 admin-alert 事件转发给面板
func consumeAlerts(ctx context.Context, hub *Hub, brokers []string, topic string) {
	// 每个网关节点独立消费组，所有节点都收到全量告警
	reader := mq.NewKafkaReader(brokers, topic, nodeID)
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			logger.L().Error().Err(err).Msg("could not read message")
			continue
		}
		var event domain.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.L().Warn().Err(err).Msg("skipping malformed notification event")
			continue
		}
		if event.Kind != domain.KindAdminAlert {
			continue
		}
		hub.broadcast <- msg.Value
	}
}

func main() {
	cfg := bootstrap.Init(serviceName)

	hub := newHub()
	go hub.run()

	ctx, cancel := context.WithCancel(context.Background())
	go consumeAlerts(ctx, hub, strings.Split(cfg.Infra.KafkaAddrs, ","), cfg.App.NotificationTopic)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	server := &http.Server{Addr: listenAddr, Handler: mux}

	go func() {
		logger.L().Info().Str("node", nodeID).Msgf("push gateway listening on %s", listenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info().Msg("shutting down push gateway")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Error().Err(err).Msg("error shutting down http server")
	}
}
