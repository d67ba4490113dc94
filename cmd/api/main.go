package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sigte/autoriza-api/internal/application/autoriza"
	"github.com/sigte/autoriza-api/internal/application/emisor"
	"github.com/sigte/autoriza-api/internal/infrastructure/postgres"
	"github.com/sigte/autoriza-api/internal/infrastructure/report"
	httpRouter "github.com/sigte/autoriza-api/internal/interfaces/http"
	"github.com/sigte/autoriza-api/pkg/config"
	"github.com/sigte/autoriza-api/pkg/logger"
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
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	contribRepo := postgres.NewContribuyenteRepository(pool)
	docRepo := postgres.NewDocumentoRepository(pool)
	autRepo := postgres.NewAutorizacionRepository(pool)
	estRepo := postgres.NewEstadisticaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	emisorUC := emisor.NewUseCase(txRunner, docRepo, contribRepo)
	autorizaUC := autoriza.NewUseCase(txRunner, autRepo, autoriza.NewValidador(), log)
	informe := report.NewInformeAutorizaciones(estRepo, autRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		EmisorUC:   emisorUC,
		AutorizaUC: autorizaUC,
		EstRepo:    estRepo,
		Informe:    informe,
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

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
