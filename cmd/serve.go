package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consent-manager/core/loader"
	"consent-manager/core/logger"
	"consent-manager/core/metrics"
	"consent-manager/core/middleware/auth"
	"consent-manager/core/middleware/rayid"
	"consent-manager/core/store"
	"consent-manager/feature/consent"
	"consent-manager/feature/integrity"
	"consent-manager/feature/integrity/checks"
	"consent-manager/feature/receipts"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Consent Manager API
// @version 1.0
// @description API for storing visitor consent and rendering consent-aware documents.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// metricsPath is served without an API key.
const metricsPath = "/metrics"

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the consent manager server",
	Long:    `Loads the catalog, opens the configured stores and starts the HTTP server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()
		zap.ReplaceGlobals(rt.logger)

		app, err := newApp(rt)
		if err != nil {
			return err
		}

		go func() {
			rt.logger.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(":" + rt.cfg.Server.Port); err != nil {
				rt.logger.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		rt.logger.Info("Shutting down server...")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// newApp builds the fiber application with middleware and features.
func newApp(rt *runtime) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             rt.cfg.Server.BodyLimit(),
		ReadTimeout:           time.Duration(rt.cfg.Server.ReadTimeoutSeconds) * time.Second,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	app.Use(recover.New())
	app.Use(rayid.New())
	app.Use(requestLogger(rt.logger))

	app.Get(metricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{metricsPath}}))

	mgr := loader.NewManager()

	receiptsFeature := receipts.NewFeature(rt.db, rt.logger)
	var factories []consent.WatcherFactory
	if receiptsFeature.IsEnabled() {
		factories = append(factories, receiptsFeature.Watcher)
	}

	mgr.Register(consent.NewFeature(rt.instance, rt.cfg.Consent, rt.backends, m, rt.logger, factories...))
	mgr.Register(receiptsFeature)
	mgr.Register(integrity.NewFeature(integrityOptions(rt), rt.logger))

	if err := mgr.LoadAll(app); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return app, nil
}

func requestLogger(logg *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		start := time.Now()
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		l.Info("Request handled",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}

func integrityOptions(rt *runtime) integrity.Options {
	opts := integrity.Options{
		Client:  rt.storage,
		Bucket:  rt.cfg.Storage.Bucket,
		Folders: checks.Folders(rt.cfg.Consent.ConfigPrefix, rt.cfg.Consent.Store.ObjectPrefix),
		Source:  rt.source,
		Catalog: rt.cfg.Consent.ConfigName,
		DB:      rt.db,
		Tables: []checks.Table{
			{Name: rt.cfg.Consent.Store.Table, Model: store.Entry{}},
			{Name: receipts.TableName, Model: receipts.Receipt{}},
		},
	}
	if rt.redis != nil {
		opts.Redis = rt.redis
	}
	return opts
}
