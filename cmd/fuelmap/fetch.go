package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"fuelmap/internal/config"
	"fuelmap/internal/store"
	"fuelmap/pkg/stations"
)

func fetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Fetch the station dataset into the local snapshot store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database file",
				Value: "fuelmap.db",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Station API base URL (defaults to STATIONS_BASE_URL)",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	cfg := config.Load()
	baseURL := c.String("url")
	if baseURL == "" {
		baseURL = cfg.StationsBaseURL
	}
	if baseURL == "" {
		return errors.New("no station API base URL configured")
	}

	client := stations.NewClient(baseURL)
	list, err := client.FetchStations(c.Context)
	if err != nil {
		return fmt.Errorf("error fetching stations: %w", err)
	}

	st, err := store.New(c.Context, c.String("db"), slog.New(slog.DiscardHandler))
	if err != nil {
		return fmt.Errorf("error initializing store: %w", err)
	}
	defer st.Close()

	if err := st.SaveSnapshot(c.Context, time.Now(), list); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}

	fmt.Printf("Saved %d stations\n", len(list))
	return nil
}
