package http

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/balance-checker/internal/balances"
	"github.com/quantumauth-io/balance-checker/internal/service"
)

// errorFor maps a service error to its status and public body. Internals of
// unexpected faults are never returned to the caller.
func errorFor(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, service.ErrInvalidAddress):
		return http.StatusBadRequest, errorResponse{Error: ErrorInvalidAddressText, Details: DetailInvalidAddressText}
	case errors.Is(err, balances.ErrNoDataAvailable):
		return http.StatusInternalServerError, errorResponse{Error: ErrorNoBalancesFoundText}
	default:
		return http.StatusInternalServerError, errorResponse{Error: ErrorInternalServerText}
	}
}

func writeError(c *gin.Context, err error) {
	status, body := errorFor(err)
	c.AbortWithStatusJSON(status, body)
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
