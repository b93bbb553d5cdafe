package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tillpoint/tillpoint-backend/api/controllers"
	"github.com/tillpoint/tillpoint-backend/api/middleware"
	catalogsvc "github.com/tillpoint/tillpoint-backend/internal/catalog"
	checkoutsvc "github.com/tillpoint/tillpoint-backend/internal/checkout"
	salessvc "github.com/tillpoint/tillpoint-backend/internal/sales"
	"github.com/tillpoint/tillpoint-backend/pkg/config"
	"github.com/tillpoint/tillpoint-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	gatherer prometheus.Gatherer,
	checkoutService checkoutsvc.Service,
	catalogService catalogsvc.Service,
	salesService salessvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/registers/{registerId}", func(r chi.Router) {
			r.Get("/", controllers.RegisterState(checkoutService, logg))
			r.Post("/scan", controllers.RegisterScan(checkoutService, logg))

			r.Post("/items", controllers.RegisterAddItem(checkoutService, logg))
			r.Delete("/items/{itemId}", controllers.RegisterRemoveItem(checkoutService, logg))
			r.Post("/items/last/delete", controllers.RegisterRemoveLast(checkoutService, logg))
			r.Post("/items/select", controllers.RegisterSelectItem(checkoutService, logg))

			r.Post("/baskets", controllers.RegisterCreateBasket(checkoutService, logg))
			r.Post("/baskets/cycle", controllers.RegisterCycleBasket(checkoutService, logg))
			r.Post("/baskets/select", controllers.RegisterSelectBasket(checkoutService, logg))
			r.Post("/baskets/resume", controllers.RegisterResumeBasket(checkoutService, logg))

			r.Post("/overview/open", controllers.RegisterOverview(checkoutService, logg, true))
			r.Post("/overview/close", controllers.RegisterOverview(checkoutService, logg, false))

			r.Route("/editor", func(r chi.Router) {
				r.Post("/open", controllers.RegisterEditorOpen(checkoutService, logg))
				r.Post("/field", controllers.RegisterEditorField(checkoutService, logg))
				r.Post("/selection", controllers.RegisterEditorSelection(checkoutService, logg))
				r.Post("/focus", controllers.RegisterEditorFocus(checkoutService, logg))
				r.Post("/keypad", controllers.RegisterEditorKeypad(checkoutService, logg))
				r.Post("/confirm", controllers.RegisterEditorConfirm(checkoutService, logg))
				r.Post("/cancel", controllers.RegisterEditorCancel(checkoutService, logg))
			})

			r.Post("/finalize", controllers.RegisterFinalize(cfg.Checkout, checkoutService, logg))
			r.Post("/cancel", controllers.RegisterCancel(checkoutService, logg))
			r.Post("/keys", controllers.RegisterKey(checkoutService, logg))
			r.Post("/recall", controllers.RegisterRecall(checkoutService, logg))
			r.Post("/recall/discard", controllers.RegisterRecallDiscard(checkoutService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(salesService, logg))
			r.Get("/{saleId}", controllers.SalesGet(salesService, logg))
		})

		r.Route("/catalog/products", func(r chi.Router) {
			r.Get("/", controllers.CatalogListProducts(catalogService, logg))
			r.Get("/{productId}", controllers.CatalogGetProduct(catalogService, logg))
		})

		r.Post("/quick-sale/quote", controllers.QuickSaleQuote(checkoutService, logg))
	})

	return r
}
