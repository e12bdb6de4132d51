package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")
	ErrVersionConflict = errors.New("order was modified concurrently")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("user is unauthorized to access the resource")
	ErrForbidden                  = errors.New("user is forbidden to access the resource")

	// * Business errors.
	ErrEmptyOrderItems        = errors.New("order must contain at least one item")
	ErrMissingShippingAddress = errors.New("shipping address and city are required")
	ErrMissingPaymentMethod   = errors.New("payment method is required")
	ErrMissingPaymentProof    = errors.New("gateway order id, payment id and signature are required")
	ErrPaymentVerification    = errors.New("payment signature verification failed")
	ErrGatewayNotConfigured   = errors.New("payment gateway credentials are not configured")
	ErrGatewayRequest         = errors.New("payment gateway request failed")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidOrderStatus     = errors.New("unknown order status")
	ErrInvalidPaymentStatus   = errors.New("unknown payment status")
	ErrIllegalTransition      = errors.New("order status transition is not allowed")
	ErrOrderNotCancellable    = errors.New("order can no longer be cancelled")
	ErrInsufficientStock      = errors.New("not enough stock for ordered quantity")
)
