package rest

import (
	"errors"
	"net/http"

	"daztao-be/internal/auth"
	"daztao-be/internal/logger"
	"daztao-be/internal/order"
	"daztao-be/internal/payment"
	"daztao-be/internal/product"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

const (
	msgInternal    = "Internal server error"
	msgInvalidBody = "Invalid request body"
	msgValidation  = "Please fill in all required fields"
)

// statusFor maps sentinel errors to HTTP status codes. Anything not listed is a 500.
var statusFor = []struct {
	err  error
	code int
}{
	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrEmptyOrder, http.StatusBadRequest},
	{order.ErrInvalidQuantity, http.StatusBadRequest},
	{order.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{order.ErrInvalidVerification, http.StatusBadRequest},
	{order.ErrUnknownAction, http.StatusBadRequest},
	{order.ErrAmountMismatch, http.StatusBadRequest},
	{order.ErrInvalidAmount, http.StatusBadRequest},
	{order.ErrInvalidUTR, http.StatusBadRequest},
	{order.ErrConcurrentUpdate, http.StatusConflict},
	{order.ErrNotTerminal, http.StatusConflict},
	{order.ErrPaidDowngrade, http.StatusConflict},
	{order.ErrUTRNotApplicable, http.StatusConflict},
	{order.ErrOrderClosed, http.StatusConflict},
	{order.ErrOrderIDExhausted, http.StatusServiceUnavailable},

	{product.ErrProductNotFound, http.StatusNotFound},
	{product.ErrSlugTaken, http.StatusConflict},
	{product.ErrInvalidStatus, http.StatusBadRequest},
	{product.ErrTitleRequired, http.StatusBadRequest},
	{product.ErrInvalidSlug, http.StatusBadRequest},
	{product.ErrInvalidPrice, http.StatusBadRequest},
	{product.ErrInvalidStock, http.StatusBadRequest},

	{payment.ErrInvalidVerifyParams, http.StatusBadRequest},
	{payment.ErrInvalidSignature, http.StatusBadRequest},
	{payment.ErrNotOnlinePayment, http.StatusConflict},
	{payment.ErrAlreadyPaid, http.StatusConflict},
	{payment.ErrOrderMismatch, http.StatusConflict},
	{payment.ErrPaymentNotCaptured, http.StatusConflict},
	{payment.ErrPaymentNotFound, http.StatusNotFound},
	{payment.ErrMissingSecret, http.StatusServiceUnavailable},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrAdminDisabled, http.StatusServiceUnavailable},
}

// writeError renders err as {"error": ...}. Messages of known errors reach the
// storefront verbatim; unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *order.ValidationError
		stockErr      *order.StockError
		missingErr    *order.ProductMissingError
		transitionErr *order.TransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.WriteJSONFieldErrors(w, msgValidation, validationErr.Fields, http.StatusBadRequest)
		return
	case errors.As(err, &stockErr):
		utils.WriteJSONError(w, stockErr.Error(), http.StatusConflict)
		return
	case errors.As(err, &missingErr):
		utils.WriteJSONError(w, missingErr.Error(), http.StatusNotFound)
		return
	case errors.As(err, &transitionErr):
		utils.WriteJSONError(w, transitionErr.Error(), http.StatusConflict)
		return
	}

	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			utils.WriteJSONError(w, err.Error(), m.code)
			return
		}
	}

	logger.FromCtx(r.Context()).Error("request failed",
		zap.String("layer", "handler"),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	utils.WriteJSONError(w, msgInternal, http.StatusInternalServerError)
}
