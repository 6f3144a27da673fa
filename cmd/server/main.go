package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"salesboard/internal/api"
	"salesboard/internal/config"
	"salesboard/internal/engine"
)

func main() {
	config.Load()
	log := config.GetLogger()
	config.ApplyLogLevel(config.LogLevel())

	// Money fields marshal as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	// Handler starts with no snapshot; reports 503 until the load below lands.
	h := api.NewHandler(log)
	h.RegisterRoutes(e)

	dataFile := config.DataFile()
	go func() {
		log.WithField("file", dataFile).Info("loading snapshot")
		t0 := time.Now()

		store, err := engine.LoadSnapshot(dataFile)
		if err != nil {
			log.WithFields(logrus.Fields{"file": dataFile, "error": err.Error()}).
				Fatal("snapshot load failed")
		}

		h.SetStore(store)
		log.WithFields(logrus.Fields{
			"snapshot_id": store.SnapshotID.String(),
			"orders":      len(store.Orders()),
			"customers":   len(store.Customers()),
			"products":    len(store.Products()),
			"elapsed":     time.Since(t0).String(),
		}).Info("snapshot ready")
	}()

	addr := ":" + config.Port()
	log.WithField("addr", addr).Info("server listening")
	e.Logger.Fatal(e.Start(addr))
}
