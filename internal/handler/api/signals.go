package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CoinSage/internal/domain/models"
	domsvc "CoinSage/internal/domain/service"
	icache "CoinSage/internal/service/cache"
	"CoinSage/internal/service/metrics"
	"CoinSage/internal/service/ratelimit"
	"CoinSage/internal/usecase"
	xhttp "CoinSage/pkg/http"
	applogger "CoinSage/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SignalsHandler serves the signal API over Echo. Read endpoints are
// rate limited per client and cached briefly.
type SignalsHandler struct {
	engine   *usecase.SignalEngine
	snapshot *usecase.SnapshotUseCase
	pulse    domsvc.ContextProvider
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
	l        *applogger.Logger
}

func NewSignalsHandler(
	engine *usecase.SignalEngine,
	snapshot *usecase.SnapshotUseCase,
	pulse domsvc.ContextProvider,
	l *applogger.Logger,
) *SignalsHandler {
	metrics.Register()
	return &SignalsHandler{
		engine:   engine,
		snapshot: snapshot,
		pulse:    pulse,
		rl:       ratelimit.New(),
		l:        l,
	}
}

// SetCache enables response caching for read endpoints.
func (h *SignalsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/items/:id/signal/buy", h.BuySignal)
	g.POST("/items/:id/signal/sell", h.SellSignal)
	g.GET("/items/:id/velocity", h.Velocity)
	g.GET("/market/pulse", h.Pulse)
	e.GET("/health", h.Health)
}

func (h *SignalsHandler) BuySignal(c echo.Context) error {
	start := time.Now()
	endpoint := "buy_signal"
	defer func() {
		metrics.SignalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.BuySignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":buy", 5, 2) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := "buy:" + req.Market + ":" + req.ItemID
	if b, ok := h.cached(cacheKey, endpoint); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.engine.ScoreBuy(c.Request().Context(), req.ItemID, req.Market)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.store(cacheKey, endpoint, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) SellSignal(c echo.Context) error {
	start := time.Now()
	endpoint := "sell_signal"
	defer func() {
		metrics.SignalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.SellSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":sell", 5, 2) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	// sell depends on the caller's buy price, never cached
	res, err := h.engine.ScoreSell(c.Request().Context(), req.ItemID, req.Market, req.BuyPrice)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Velocity(c echo.Context) error {
	start := time.Now()
	endpoint := "velocity"
	defer func() {
		metrics.SignalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.VelocityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":velocity", 5, 2) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := fmt.Sprintf("velocity:%s:%s:%d", req.Market, req.ItemID, req.Hours)
	if b, ok := h.cached(cacheKey, endpoint); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	res, err := h.snapshot.Get(c.Request().Context(), usecase.SnapshotParams{
		ItemID: req.ItemID,
		Market: req.Market,
		Window: time.Duration(req.Hours) * time.Hour,
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	h.store(cacheKey, endpoint, res, 60*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Pulse(c echo.Context) error {
	start := time.Now()
	endpoint := "pulse"
	defer func() {
		metrics.SignalLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req := &models.PulseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pulse.Current(c.Request().Context(), req.Market)
	if err != nil {
		if errors.Is(err, models.ErrContextUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "market context unavailable")
		}
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SignalsHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.SignalErrors.WithLabelValues(endpoint).Inc()
	if h.l != nil {
		h.l.Error("signals."+endpoint+" error", applogger.Error(err))
	}
	if errors.Is(err, models.ErrItemUnknown) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("unknown item"))
	}
	var invalid *models.InvalidSeriesError
	if errors.As(err, &invalid) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(invalid.Error()))
	}
	return xhttp.InternalServerErrorResponse(c)
}

func (h *SignalsHandler) cached(key, endpoint string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("signals."+endpoint+" cache_get_error", applogger.Error(err))
		}
		return nil, false
	}
	return b, ok
}

// store caches the full response envelope so cache hits are
// byte-identical to fresh responses.
func (h *SignalsHandler) store(key, endpoint string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    v,
	})
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil && h.l != nil {
		h.l.Warn("signals."+endpoint+" cache_set_error", applogger.Error(err))
	}
}
