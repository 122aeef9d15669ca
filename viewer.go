package main

import (
	"encoding/json"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ipRateLimiter tracks last connection time per IP to prevent reconnect storms
type ipRateLimiter struct {
	mu       sync.Mutex
	times    map[string]time.Time
	cooldown time.Duration
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	return &ipRateLimiter{times: make(map[string]time.Time), cooldown: cooldown}
}

// allow returns true if this IP can connect, and records the attempt
func (rl *ipRateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for addr, t := range rl.times {
		if now.Sub(t) >= rl.cooldown {
			delete(rl.times, addr)
		}
	}
	if _, ok := rl.times[ip]; ok {
		return false
	}
	rl.times[ip] = now
	return true
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Viewers are local browsers; any origin is fine.
		return true
	},
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

// sendErrorAndClose sends an error message via WebSocket then closes the connection
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(ErrorMsg{Type: ViewMsgError, Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}

// ViewerHub is the presentation boundary: it broadcasts frames to connected
// viewers and feeds their key and restart messages back to the game.
type ViewerHub struct {
	viewers *ViewerSet
	keys    *KeyState
	restart func()
	welcome WelcomeMsg
	limiter *ipRateLimiter
	metrics *Metrics
	log     *zap.SugaredLogger
}

var _ Renderer = (*ViewerHub)(nil)

// NewViewerHub creates a hub. restart is invoked for every restart message.
func NewViewerHub(keys *KeyState, restart func(), welcome WelcomeMsg, metrics *Metrics, log *zap.SugaredLogger) *ViewerHub {
	welcome.Type = ViewMsgWelcome
	return &ViewerHub{
		viewers: NewViewerSet(MaxViewers),
		keys:    keys,
		restart: restart,
		welcome: welcome,
		limiter: newIPRateLimiter(IPCooldownSec * time.Second),
		metrics: metrics,
		log:     log,
	}
}

// Render marshals the frame once and queues it for every viewer.
func (h *ViewerHub) Render(frame FrameMsg) {
	if h.viewers.Len() == 0 {
		return
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Warnw("encode frame", "err", err)
		return
	}
	h.viewers.Broadcast(data)
}

// Viewers returns the number of connected viewers.
func (h *ViewerHub) Viewers() int {
	return h.viewers.Len()
}

// HandleWS upgrades a viewer connection and serves it until it disconnects.
func (h *ViewerHub) HandleWS(c *gin.Context) {
	ip := c.GetHeader("X-Forwarded-For")
	if ip == "" {
		ip, _, _ = net.SplitHostPort(c.Request.RemoteAddr)
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Debugw("ws upgrade error", "err", err)
		return
	}

	// Check limits after upgrade so the viewer can receive error messages
	if !h.limiter.allow(ip, time.Now()) {
		h.metrics.IncViewersDenied()
		sendErrorAndClose(ws, "Reconnecting too fast. Please wait a moment.")
		return
	}
	conn := NewConn(ws)
	if !h.viewers.Join(conn) {
		h.metrics.IncViewersDenied()
		sendErrorAndClose(ws, "Too many viewers.")
		return
	}
	h.log.Infow("viewer connected", "conn", conn.ID, "ip", ip)
	_ = conn.Send(h.welcome)

	go conn.writePump()
	conn.ReadLoop(h.log, h.onMessage, h.onDisconnect)
}

func (h *ViewerHub) onMessage(conn *Conn, msg ViewerMessage) {
	switch msg.Type {
	case ViewMsgKey:
		if msg.Down == 1 {
			h.keys.Press(msg.Key)
		} else {
			h.keys.Release(msg.Key)
		}
	case ViewMsgRestart:
		if h.restart != nil {
			h.restart()
		}
	default:
		h.log.Debugw("unknown viewer message", "conn", conn.ID, "type", msg.Type)
	}
}

// onDisconnect drops the viewer. Every viewer steers the same snake through
// one shared KeyState, so keys are released only when the last viewer leaves.
func (h *ViewerHub) onDisconnect(conn *Conn) {
	h.viewers.Leave(conn.ID)
	if h.viewers.Len() == 0 {
		h.keys.Clear()
	}
	h.log.Infow("viewer disconnected", "conn", conn.ID)
}

// NewRouter wires the viewer socket, status endpoints and static files.
func NewRouter(hub *ViewerHub, metrics *Metrics, staticDir string, log *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET(WebSocketPath, hub.HandleWS)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"viewers": hub.Viewers(),
			"metrics": metrics.Snapshot(),
		})
	})

	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))
	} else {
		log.Debugw("no static viewer files", "dir", staticDir)
	}
	return r
}

// requestLogger logs every HTTP request at debug level.
func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debugw("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}
