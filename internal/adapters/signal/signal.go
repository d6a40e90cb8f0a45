package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"honyaku/internal/app"
	"honyaku/internal/app/orch"
	"honyaku/internal/config"
	"honyaku/internal/core"
	"honyaku/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket endpoint: upgrade, pumps, event dispatch.
type Controller struct {
	Sessions *app.Sessions
	Registry *core.Registry
	Orch     *orch.Orchestrator

	limiter  *RateLimiter
	upgrader websocket.Upgrader
	cfg      *config.Config

	// base outlives any single connection; in-flight translations are not
	// cancelled when their requester disconnects.
	base context.Context
}

func NewController(base context.Context, cfg *config.Config, sessions *app.Sessions, registry *core.Registry, orchestrator *orch.Orchestrator) *Controller {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Controller{
		Sessions: sessions,
		Registry: registry,
		Orch:     orchestrator,
		limiter:  NewRateLimiter(cfg.TranslateLimit, cfg.TranslateWindow),
		cfg:      cfg,
		base:     base,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (ctl *Controller) HandleSignal(c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.cfg.ReadLimit)

	// One session per connection, not per browser: two tabs are two sessions.
	sid := domain.SessionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("ct", c.GetString("client_token")).Msg("new WS connection")

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	ctl.Sessions.Bind(sid, conn)

	ctx, cancel := context.WithCancel(ctl.base)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
