package rest

import (
	"errors"
	"net/http"

	"daztao-be/internal/product"
	"daztao-be/internal/utils"
)

type ProductHandler struct {
	Products product.Service
}

// list returns visible products; admins may ask for everything with ?all=true.
func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	opts := product.ListOptions{
		IncludeHidden: r.URL.Query().Get("all") == "true" && utils.IsAdmin(r.Context()),
	}

	products, err := h.Products.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	utils.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), r.PathValue("slug"), utils.IsAdmin(r.Context()))
	if errors.Is(err, product.ErrProductNotFound) {
		utils.WriteJSONError(w, product.MsgNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var doc product.Document
	if err := utils.DecodeJSON(r, &doc); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	p, err := h.Products.Create(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	var doc product.Document
	if err := utils.DecodeJSON(r, &doc); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	p, err := h.Products.Update(r.Context(), r.PathValue("slug"), doc)
	if errors.Is(err, product.ErrProductNotFound) {
		utils.WriteJSONError(w, product.MsgNotFoundUpdate, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.Products.Delete(r.Context(), r.PathValue("slug"))
	if errors.Is(err, product.ErrProductNotFound) {
		utils.WriteJSONError(w, product.MsgNotFoundDelete, http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": product.MsgDeleted})
}
