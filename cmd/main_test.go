package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/rostrumhq/rostrum/internal/adapters/http/api"
	app "github.com/rostrumhq/rostrum/internal/app"
	"github.com/rostrumhq/rostrum/internal/config"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/pkg/logger"
	"github.com/rostrumhq/rostrum/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			ctx := context.Background()
			cfg, err := config.Load(ctx)

			convey.Convey("Then configuration should be loadable", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldNotBeEmpty)
				convey.So(cfg.WorkerCount, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithWorkerCount(2),
					app.WithQueueSize(100),
					app.WithDedupeSize(1000),
					app.WithShardCount(4),
					app.WithDefaultMethod(ranking.MethodGeneral),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			srv := &http.Server{
				Addr:              ":0",
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}

			convey.Convey("Then HTTP server should be creatable", func() {
				convey.So(srv, convey.ShouldNotBeNil)
				convey.So(srv.ReadTimeout, convey.ShouldEqual, 10*time.Second)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(10))

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When wiring the service behind the HTTP mux", func() {
			ctx := context.Background()

			svc := app.New(
				app.WithWorkerCount(2),
				app.WithQueueSize(100),
				app.WithDedupeSize(1000),
			)
			err := svc.Start(ctx)
			convey.So(err, convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			apiServer := api.NewServer(svc, svc, 1000)
			apiServer.Register(ctx, mux)

			convey.Convey("Then the stats endpoint answers", func() {
				req := httptest.NewRequest(http.MethodGet, "/stats", nil)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And the health endpoint answers", func() {
				req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
