package http

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/balance-checker/internal/observability"
	"github.com/quantumauth-io/balance-checker/internal/service"
)

// BalanceGetter is the core the transport wraps.
type BalanceGetter interface {
	GetBalances(ctx context.Context, address string) (service.BalanceResponse, error)
	ClearCache()
}

type Handler struct {
	balances BalanceGetter
	metrics  *observability.Metrics
	cfg      ServerConfig
}

func NewHandler(balances BalanceGetter, metrics *observability.Metrics, cfg ServerConfig) (*Handler, error) {
	if balances == nil {
		return nil, errors.New("http: balance service is nil")
	}
	return &Handler{balances: balances, metrics: metrics, cfg: cfg}, nil
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	r.Use(withRequestID(), withMetrics(h.metrics), withCORS(h.cfg.AllowedOrigins))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/balances/:address", h.GetBalances)

		if h.cfg.EnableAdmin {
			api.DELETE("/cache", h.ClearCache)
		}
	}

	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, RootBannerText)
	})

	return r
}
