package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/verdora/ordercore/internal/core/domain"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrNoUpdatedData:   http.StatusBadRequest,
	domain.ErrBadRequest:      http.StatusBadRequest,
	domain.ErrVersionConflict: http.StatusConflict,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrExpiredToken:               http.StatusUnauthorized,
	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrForbidden:                  http.StatusForbidden,

	domain.ErrEmptyOrderItems:        http.StatusBadRequest,
	domain.ErrMissingShippingAddress: http.StatusBadRequest,
	domain.ErrMissingPaymentMethod:   http.StatusBadRequest,
	domain.ErrMissingPaymentProof:    http.StatusBadRequest,
	domain.ErrPaymentVerification:    http.StatusBadRequest,
	domain.ErrInvalidAmount:          http.StatusBadRequest,
	domain.ErrInvalidOrderStatus:     http.StatusBadRequest,
	domain.ErrInvalidPaymentStatus:   http.StatusBadRequest,
	domain.ErrIllegalTransition:      http.StatusBadRequest,
	domain.ErrOrderNotCancellable:    http.StatusBadRequest,
	domain.ErrInsufficientStock:      http.StatusBadRequest,

	// Operator misconfiguration, not bad customer proof.
	domain.ErrGatewayNotConfigured: http.StatusInternalServerError,
	domain.ErrGatewayRequest:       http.StatusInternalServerError,
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for a request binding failure
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, errorResponse{Error: domain.ErrBadRequest.Error()})
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
		h.logger.Error("error processing request", zap.Error(err))
		ctx.JSON(statusCode, errorResponse{Error: domain.ErrInternal.Error()})
		return
	}
	ctx.JSON(statusCode, errorResponse{Error: err.Error()})
}

// handleSuccess sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}

// handleAbort is used by middleware to stop the chain with an error status.
func handleAbort(ctx *gin.Context, err error) {
	statusCode, ok := errorStatusMap[err]
	if !ok {
		statusCode = http.StatusInternalServerError
	}
	ctx.AbortWithStatusJSON(statusCode, errorResponse{Error: err.Error()})
}
