package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{JSONKeyStatus: JSONKeyOK})
}

// GetBalances serves GET /api/balances/:address.
func (h *Handler) GetBalances(c *gin.Context) {
	address := c.Param("address")

	resp, err := h.balances.GetBalances(c.Request.Context(), address)
	if err != nil {
		status, _ := errorFor(err)
		if status >= http.StatusInternalServerError {
			log.Error("get balances failed", "request_id", requestID(c), "address", address, "error", err)
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ClearCache(c *gin.Context) {
	h.balances.ClearCache()
	c.Status(http.StatusNoContent)
}
