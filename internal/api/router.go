package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/api/middleware"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
)

type RouterConfig struct {
	Handlers        *Handlers
	AuthHandlers    *AuthHandlers
	PaymentHandlers *PaymentHandlers
	JWTService      *auth.JWTService
	Logger          *zap.Logger
	RequestTimeout  time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	requireAuth := middleware.AuthMiddleware(cfg.JWTService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger.Named("http")))
	r.Use(chimw.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chimw.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", cfg.AuthHandlers.SignUp)
		r.Post("/signin", cfg.AuthHandlers.SignIn)
		r.Post("/refresh", cfg.AuthHandlers.Refresh)
		r.With(middleware.OptionalAuthMiddleware(cfg.JWTService)).Post("/signout", cfg.AuthHandlers.SignOut)
		r.With(requireAuth).Get("/me", cfg.AuthHandlers.Me)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.GetProducts)
		r.Get("/{id}", h.GetProduct)
	})

	r.Post("/payments/webhook", cfg.PaymentHandlers.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Put("/items/{productID}", h.UpdateCartItem)
			r.Delete("/items/{productID}", h.RemoveFromCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.PlaceOrder)
			r.Post("/quote", h.Quote)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.GetOrders)
			r.Get("/{id}", h.GetOrder)
			r.Post("/{id}/cancel", h.CancelOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(auth.RoleAdmin))

			r.Get("/orders", h.GetAllOrders)
			r.Patch("/orders/{id}/fulfillment", h.UpdateFulfillment)
			r.Patch("/orders/{id}/payment", h.UpdatePayment)

			r.Get("/coupons", h.ListCoupons)
			r.Post("/coupons", h.CreateCoupon)
			r.Put("/coupons/{id}", h.UpdateCoupon)
			r.Delete("/coupons/{id}", h.DeactivateCoupon)
		})
	})

	return r
}
