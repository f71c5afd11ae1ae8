package rest

import (
	"net/http"

	"daztao-be/internal/payment"
	"daztao-be/internal/utils"
)

type PaymentHandler struct {
	Payments payment.Service
}

type checkoutRequest struct {
	OrderID string `json:"orderId"`
}

func (h *PaymentHandler) startCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := utils.DecodeJSON(r, &req); err != nil || req.OrderID == "" {
		utils.WriteJSONError(w, "orderId is required", http.StatusBadRequest)
		return
	}

	checkout, err := h.Payments.StartCheckout(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, checkout)
}

func (h *PaymentHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req payment.VerifyRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	o, err := h.Payments.Verify(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
