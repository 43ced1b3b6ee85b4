package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"enenni_wallet_back/models"
	"enenni_wallet_back/pkg/cache"
	"enenni_wallet_back/pkg/pricefeed"
)

type priceQuery struct {
	Base  string `form:"base" binding:"required"`
	Quote string `form:"quote" binding:"required,alpha,len=3"`
	Range string `form:"range"`
}

func bindPriceQuery(c *gin.Context) (priceQuery, bool) {
	var q priceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "base and a 3 letter quote are required")
		return q, false
	}
	base, ok := models.ParseCurrency(q.Base)
	if !ok {
		newErrorResponse(c, http.StatusBadRequest, "unsupported currency")
		return q, false
	}
	q.Base = base.String()
	return q, true
}

func (h *Handler) GetLivePrice(c *gin.Context) {
	q, ok := bindPriceQuery(c)
	if !ok {
		return
	}
	price, err := h.queries.LivePrice(c.Request.Context(), q.Base, q.Quote)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

func (h *Handler) GetChartData(c *gin.Context) {
	q, ok := bindPriceQuery(c)
	if !ok {
		return
	}
	rng := pricefeed.Range1D
	if q.Range != "" {
		if rng, ok = pricefeed.ParseTimeRange(q.Range); !ok {
			newErrorResponse(c, http.StatusBadRequest, "unsupported time range")
			return
		}
	}

	points, err := h.queries.ChartData(c.Request.Context(), q.Base, q.Quote, rng)
	if err != nil {
		errorResponse(c, err)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"range":  rng,
		"points": points,
	})
}

// StreamLivePrice observes the live price key for as long as the client stays connected and
// pushes every settled state as a server-sent event.
func (h *Handler) StreamLivePrice(c *gin.Context) {
	q, ok := bindPriceQuery(c)
	if !ok {
		return
	}

	updates := make(chan cache.TypedState[models.CryptoPrice], 1)
	sub := h.queries.WatchLivePrice(q.Base, q.Quote, func(s cache.TypedState[models.CryptoPrice]) {
		// keep only the latest state; the listener must not block the cache
		select {
		case <-updates:
		default:
		}
		updates <- s
	})
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case s := <-updates:
			if s.Fetching && !s.HasValue {
				return true
			}
			if s.Err != nil {
				c.SSEvent("error", gin.H{"message": s.Err.Error(), "status": s.Status.String()})
			}
			if s.HasValue && !s.Fetching {
				c.SSEvent("price", s.Value)
			}
			return true
		}
	})
}

// Focus is sent by the page when its window regains focus.
func (h *Handler) Focus(c *gin.Context) {
	wrapOkJSON(c, map[string]interface{}{
		"refetched": h.queries.Cache().Focus(),
	})
}
