package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/betbot/gomarket/internal/session"
	"github.com/betbot/gomarket/pkg/logger"
)

// streamHub 把会话快照推送给所有 WebSocket 订阅者
// 会话每次状态变化触发一次广播；慢客户端直接断开，不阻塞广播
type streamHub struct {
	sess  *session.Session
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// 控制面只在本机/内网使用
	CheckOrigin: func(r *http.Request) bool { return true },
}

func newStreamHub(sess *session.Session) *streamHub {
	return &streamHub{
		sess:  sess,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// handleStream 升级为 WebSocket 并注册订阅
func (s *Server) handleStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Debugf("WebSocket 升级失败: %v", err)
		return
	}
	s.hub.add(conn)

	// 新订阅者立即收到一份当前快照
	if err := conn.WriteJSON(s.sess.Snapshot()); err != nil {
		s.hub.remove(conn)
		return
	}

	// 读循环只用于感知断开（客户端不发送业务数据）
	go func() {
		defer s.hub.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *streamHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *streamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
	h.mu.Unlock()
}

// broadcastLoop 监听会话变化信号，向所有订阅者推送快照
func (h *streamHub) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.sess.Changed():
			h.broadcast()
		}
	}
}

func (h *streamHub) broadcast() {
	snap := h.sess.Snapshot()

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteJSON(snap); err != nil {
			h.remove(c)
		}
	}
}

// closeAll 关闭全部订阅连接
func (h *streamHub) closeAll() {
	h.mu.Lock()
	for c := range h.conns {
		_ = c.Close()
		delete(h.conns, c)
	}
	h.mu.Unlock()
}
