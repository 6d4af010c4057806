package paperserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/tradedesk/internal/account"
	"github.com/zappabad/tradedesk/internal/execution"
	"github.com/zappabad/tradedesk/internal/execution/paper"
	"github.com/zappabad/tradedesk/internal/market"
)

// PairLister lists the latest pair prices.
type PairLister interface {
	Pairs() []market.AssetPair
}

// Config holds configuration for the server.
type Config struct {
	// TickInterval is how often /ws/prices pushes every pair.
	TickInterval time.Duration
	// OrdersLimit caps /api/v1/orders when no limit is given.
	OrdersLimit int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: time.Second,
		OrdersLimit:  50,
	}
}

// OrdersResponse is the wire shape of /api/v1/orders.
type OrdersResponse struct {
	Orders []execution.ExecutedOrder `json:"orders"`
}

// Server exposes a paper engine over HTTP.
type Server struct {
	cfg      Config
	engine   *paper.Engine
	pairs    PairLister
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

// New creates a server.
func New(engine *paper.Engine, pairs PairLister, cfg Config) *Server {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.OrdersLimit <= 0 {
		cfg.OrdersLimit = def.OrdersLimit
	}
	return &Server{
		cfg:    cfg,
		engine: engine,
		pairs:  pairs,
		log:    logrus.WithField("component", "paperserver"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the gin handler.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/ws/prices", s.handlePrices)

	v1 := r.Group("/api/v1")
	v1.POST("/trades", s.handleTrade)
	v1.GET("/balances", s.handleBalances)
	v1.GET("/orders", s.handleOrders)

	return r
}

func (s *Server) handleTrade(c *gin.Context) {
	var req execution.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, execution.Response{Message: err.Error()})
		return
	}

	resp, err := s.engine.ExecuteTrade(c.Request.Context(), req)
	if err != nil {
		s.log.WithError(err).Error("execute trade")
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if !resp.Success {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBalances(c *gin.Context) {
	bs, err := s.engine.Ledger().AccountBalances(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, account.BalancesResponse{Balances: bs})
}

func (s *Server) handleOrders(c *gin.Context) {
	limit := s.cfg.OrdersLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	orders, err := s.engine.Ledger().Orders(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	if orders == nil {
		orders = []execution.ExecutedOrder{}
	}
	c.JSON(http.StatusOK, OrdersResponse{Orders: orders})
}

// handlePrices pushes one tick per pair every TickInterval until the client goes away.
func (s *Server) handlePrices(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		for _, p := range s.pairs.Pairs() {
			if !p.Price.IsPositive() {
				continue
			}
			t := market.Tick{Symbol: p.Symbol(), Price: p.Price, Time: p.UpdatedAt}
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		}

		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
