package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/ParkEasy/ParkEasy/internal/common/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const clientSendBuffer = 16

type wsClient struct {
	conn  *websocket.Conn
	send  chan []byte
	lotID string // 加入的 lot 房间；空串表示订阅全部
}

// Hub websocket lot 房间集线器。实现 Publisher：
// 事件只发给加入了对应 lot 房间的连接。
type Hub struct {
	clients    map[*wsClient]struct{}
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan Event
	mu         sync.RWMutex
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*wsClient]struct{}),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan Event, 64),
		log:        log,
	}
}

// Run 事件循环，启动后常驻（go hub.Run()）。
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			if h.log != nil {
				h.log.Debugf("ws client joined lot=%q total=%d", c.lotID, total)
			}

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				if c.lotID != "" && c.lotID != ev.LotID {
					continue // 不在这个 lot 房间
				}
				select {
				case c.send <- msg:
				default:
					// 写不进去说明下游卡死，丢弃而不是阻塞发布方
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish 实现 Publisher，满队列时丢弃。
func (h *Hub) Publish(_ context.Context, ev Event) {
	select {
	case h.broadcast <- ev:
	default:
		if h.log != nil {
			h.log.Warn("ws broadcast queue full, dropping event")
		}
	}
}

// Joined 当前连接数（监控/测试用）。
func (h *Hub) Joined() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS gin handler：升级连接并加入 ?lotId= 指定的房间。
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Warnf("ws upgrade failed: %v", err)
		}
		return
	}

	client := &wsClient{
		conn:  conn,
		send:  make(chan []byte, clientSendBuffer),
		lotID: strings.TrimSpace(c.Query("lotId")),
	}
	h.register <- client

	go client.writeLoop()
	go client.readLoop(h)
}

func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readLoop 只为感知断连；客户端消息一律忽略。
func (c *wsClient) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
