package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/punto-venta/internal/application/catalog"
	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CommitSale *sales.CommitSaleUseCase
	SaleReader *sales.SaleReader
	Receipt    *sales.ReceiptUseCase
	Catalog    *catalog.UseCase
	JWTSecret  string
	AppName    string
	// Health verifica el almacén (y la caché si existe); nil = siempre ok.
	Health func(ctx context.Context) error
	// Metrics registro expuesto en /metrics; nil = sin endpoint.
	Metrics prometheus.Gatherer
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	registerOps(app, deps)
	registerAPI(app,
		NewSaleHandler(deps.CommitSale, deps.SaleReader, deps.Receipt),
		NewCatalogHandler(deps.Catalog),
		deps.JWTSecret,
	)
}

func registerOps(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Health(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{})))
	}
}

func registerAPI(app *fiber.App, saleHandler *SaleHandler, catalogHandler *CatalogHandler, jwtSecret string) {
	api := app.Group("/api", AuthMiddleware(jwtSecret))
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Ventas (cualquier terminal autenticada)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/folio/:folio", saleHandler.GetByFolio)
	salesGroup.Get("/:id/receipt.pdf", saleHandler.Receipt)
	salesGroup.Get("/:id", saleHandler.GetByID)

	// Catálogo (lectura: cualquier terminal; escritura: admin)
	products := api.Group("/products")
	products.Get("/", catalogHandler.ListProducts)
	products.Get("/search", catalogHandler.SearchProducts)
	products.Get("/:sku", catalogHandler.GetProduct)
	products.Put("/:sku", adminOnly, catalogHandler.UpsertProduct)

	sellers := api.Group("/sellers")
	sellers.Get("/", catalogHandler.ListSellers)
	sellers.Put("/:code", adminOnly, catalogHandler.UpsertSeller)

	customers := api.Group("/customers")
	customers.Get("/", catalogHandler.ListCustomers)
	customers.Put("/:enrollment", adminOnly, catalogHandler.UpsertCustomer)
}
