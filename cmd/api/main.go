package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/punto-venta/internal/application/catalog"
	"github.com/jhoicas/punto-venta/internal/application/sales"
	infrapdf "github.com/jhoicas/punto-venta/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/punto-venta/internal/infrastructure/redis"
	"github.com/jhoicas/punto-venta/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/punto-venta/internal/interfaces/http"
	"github.com/jhoicas/punto-venta/pkg/config"
	"github.com/jhoicas/punto-venta/pkg/logger"
	"github.com/jhoicas/punto-venta/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacén")
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	saleMetrics := metrics.NewSaleMetrics(reg)

	// Caché opcional del catálogo: solo decora las lecturas de listas.
	products, sellers, customers := st.Products, st.Sellers, st.Customers
	health := st.Ping
	if cfg.Redis.Enabled() {
		rc, err := infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, catálogo sin caché")
		} else {
			defer rc.Close()
			ttl := time.Duration(cfg.Redis.CatalogCacheTTL) * time.Second
			products = infraredis.NewProductCache(products, rc, ttl, log)
			sellers = infraredis.NewSellerCache(sellers, rc, ttl, log)
			customers = infraredis.NewCustomerCache(customers, rc, ttl, log)
			health = func(ctx context.Context) error {
				if err := st.Ping(ctx); err != nil {
					return err
				}
				return rc.Ping(ctx)
			}
		}
	}

	commitSaleUC := sales.NewCommitSaleUseCase(
		st.TxRunner,
		sales.NewFolioSequencer(sales.DefaultFolioSeries, cfg.Sale.FolioPrefix, cfg.Sale.FolioWidth),
		sales.Config{
			DefaultCustomerName: cfg.Sale.DefaultCustomerName,
			DefaultSellerName:   cfg.Sale.DefaultSellerName,
			DefaultTaxRate:      cfg.Sale.DefaultTaxRate,
			CommitRetries:       cfg.Sale.CommitRetries,
		},
		log, saleMetrics,
	)
	saleReader := sales.NewSaleReader(st.Sales)
	receiptUC := sales.NewReceiptUseCase(saleReader, infrapdf.NewMarotoPDFGenerator(), sales.BusinessInfo{
		Name:     cfg.Business.Name,
		RFC:      cfg.Business.RFC,
		Address:  cfg.Business.Address,
		Phone:    cfg.Business.Phone,
		ThankYou: cfg.Business.ThankYou,
		Locale:   cfg.Business.Locale,
	})
	catalogUC := catalog.NewUseCase(products, sellers, customers)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		UnescapePath: true,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		CommitSale: commitSaleUC,
		SaleReader: saleReader,
		Receipt:    receiptUC,
		Catalog:    catalogUC,
		JWTSecret:  cfg.JWT.Secret,
		AppName:    cfg.App.Name,
		Health:     health,
		Metrics:    reg,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Las ventas en curso terminan (commit o rollback) antes de cerrar el almacén.
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
