package rest

import (
	"context"
	"net/http"
	"time"

	"daztao-be/internal/admin"
	"daztao-be/internal/auth"
	"daztao-be/internal/logger"
	"daztao-be/internal/metrics"
	"daztao-be/internal/order"
	"daztao-be/internal/product"
	"daztao-be/internal/utils"

	"go.uber.org/zap"
)

// Authenticator checks the back-office password.
type Authenticator interface {
	Login(password string) (string, time.Time, error)
}

type AdminHandler struct {
	Auth          Authenticator
	Products      product.Service
	Orders        order.Service
	SecureCookies bool

	now func() time.Time
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AdminHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteJSONError(w, msgInvalidBody, http.StatusBadRequest)
		return
	}

	token, expires, err := h.Auth.Login(req.Password)
	if err != nil {
		metrics.Default.Counter(metrics.AdminLoginsFailed).Inc()
		logger.FromCtx(r.Context()).Warn("admin login failed",
			zap.String("layer", "handler"),
			zap.Error(err),
		)
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, auth.SessionCookieFor(token, int(auth.SessionTTL.Seconds()), h.SecureCookies))
	utils.WriteJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires})
}

func (h *AdminHandler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, auth.SessionCookieFor("", -1, h.SecureCookies))
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.now != nil {
		now = h.now
	}

	d, err := admin.LoadDashboard(r.Context(), serviceSource{h.Products, h.Orders}, now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}

// serviceSource feeds the dashboard straight from the services.
type serviceSource struct {
	products product.Service
	orders   order.Service
}

func (s serviceSource) ListProducts(ctx context.Context, includeHidden bool) ([]product.Product, error) {
	return s.products.List(ctx, product.ListOptions{IncludeHidden: includeHidden})
}

func (s serviceSource) ListOrders(ctx context.Context) ([]order.Order, error) {
	return s.orders.List(ctx)
}
