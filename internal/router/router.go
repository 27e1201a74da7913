package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/GregMSThompson/wifi-access-backend/internal/handlers"
	"github.com/GregMSThompson/wifi-access-backend/internal/middleware"
)

func NewRouter(deps *handlers.Deps) chi.Router {
	r := chi.NewRouter()

	lm := middleware.NewLoggerMiddleware(deps.Log)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(lm.LoggerMiddleware)
	r.Use(chimiddleware.Recoverer)

	nh := handlers.NewNotificationHandlers(deps)
	sh := handlers.NewSaleHandlers(deps)
	th := handlers.NewTicketHandlers(deps)
	ah := handlers.NewAdminHandlers(deps)

	r.Mount("/notifications", nh.NotificationRoutes())
	r.Mount("/sales", sh.SaleRoutes())
	r.Mount("/tickets", th.TicketRoutes())

	r.Route("/router", func(r chi.Router) {
		r.Use(middleware.RouterKey(deps.RouterSecret))
		r.Mount("/", th.RouterRoutes())
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(deps.Auth.FirebaseAuth)
		r.Mount("/", ah.AdminRoutes())
	})
	return r
}
