package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/urfave/cli/v2"

	"fuelmap/internal/config"
	"fuelmap/internal/geoloc"
	"fuelmap/internal/server"
	"fuelmap/internal/store"
	"fuelmap/pkg/directions"
	"fuelmap/pkg/geoip"
	"fuelmap/pkg/stations"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the station and directions JSON API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port (defaults to PORT)",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database file (defaults to DB_PATH)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg := config.Load()
	port := cfg.Port
	if c.Int("port") != 0 {
		port = c.Int("port")
	}
	dbPath := cfg.DBPath
	if c.String("db") != "" {
		dbPath = c.String("db")
	}

	logger := httplog.NewLogger("fuelmap", httplog.Options{
		JSON:            false,
		LogLevel:        slog.LevelDebug,
		Concise:         true,
		QuietDownPeriod: 10 * time.Second,
	})

	st, err := store.New(c.Context, dbPath, logger.Logger)
	if err != nil {
		return fmt.Errorf("error initializing store: %w", err)
	}
	defer st.Close()

	lat, lng := cfg.DefaultLatitude, cfg.DefaultLongitude
	fallback := geoloc.Location{
		CountryName: cfg.DefaultCountry,
		Latitude:    &lat,
		Longitude:   &lng,
	}

	srv := server.New(
		st,
		stations.NewClient(cfg.StationsBaseURL),
		geoip.NewClient(cfg.GeoIPURL),
		directions.NewClient(cfg.DirectionsURL, cfg.MapboxToken),
		fallback,
		logger,
	)

	go srv.RunUpdater(c.Context)

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger.Debug("Starting server on", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, srv.Router()))
	return nil
}
