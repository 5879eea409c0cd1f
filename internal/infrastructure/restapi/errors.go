package restapi

import (
	"errors"
	"net/http"

	"donation_portal/internal/app/service"
	"donation_portal/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func statusFor(kind entity.ErrorKind) int {
	switch kind {
	case entity.KindUnsupportedAsset, entity.KindInvalidAmount:
		return http.StatusBadRequest
	case entity.KindBelowMinimum, entity.KindInsufficientBalance:
		return http.StatusUnprocessableEntity
	case entity.KindPriceFeed:
		return http.StatusServiceUnavailable
	case entity.KindWalletRejected:
		return http.StatusForbidden
	case entity.KindTransactionFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var de *entity.DonationError
	switch {
	case errors.As(err, &de):
		c.JSON(statusFor(de.Kind), APIError{Error: de.Kind.String(), Message: de.UserMessage(), Retryable: de.Retryable()})
	case errors.Is(err, service.ErrInvalidAccount):
		badRequest(c, "invalid_account", err.Error())
	default:
		h.Logger.Error("Request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, APIError{Error: "internal", Message: "Something went wrong. Please try again later."})
	}
}

func badRequest(c *gin.Context, code, msg string) {
	c.JSON(http.StatusBadRequest, APIError{Error: code, Message: msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, APIError{Error: "not_found", Message: msg})
}
