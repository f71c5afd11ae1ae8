package rest

import (
	"net/http"

	"daztao-be/internal/order"
	"daztao-be/internal/utils"
)

const (
	msgOrderDeleted  = "Order Deleted"
	msgNothingToDo   = "Nothing to update"
	msgShopperFields = "Only a UTR can be submitted for an order"
)

type OrderHandler struct {
	Orders order.Service
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	o, err := h.Orders.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, order.CreateResponse{Success: true, OrderID: o.OrderID})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

// get accepts either the internal id or the DAZ order id.
func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

// update merges the patch into the order. Shoppers may only submit a UTR;
// every other field needs an admin session.
func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	var patch order.Patch
	if err := utils.DecodeJSON(r, &patch); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}
	patch.Normalize()

	if patch.Empty() {
		utils.WriteJSONError(w, msgNothingToDo, http.StatusBadRequest)
		return
	}

	var (
		o   *order.Order
		err error
	)
	switch {
	case utils.IsAdmin(r.Context()):
		o, err = h.Orders.Update(r.Context(), r.PathValue("id"), patch)
	case patch.CustomerSafe():
		o, err = h.Orders.SubmitUTR(r.Context(), r.PathValue("id"), *patch.UTR)
	default:
		utils.WriteJSONError(w, msgShopperFields, http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": msgOrderDeleted})
}

// transition applies a named operator action, e.g. POST /orders/{id}/actions/ship.
func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Transition(r.Context(), r.PathValue("id"), order.Action(r.PathValue("action")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
