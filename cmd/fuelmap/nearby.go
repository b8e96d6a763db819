package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/muesli/gominatim"
	"github.com/tkrajina/gpxgo/gpx"
	"github.com/urfave/cli/v2"

	"fuelmap/internal/store"
)

const (
	defaultRadiusKm = 5.0
	metersPerKm     = 1000.0
)

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "List nearby fuel stations from the snapshot store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "location",
				Usage: "Place name to search around",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database file",
				Value: "fuelmap.db",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude of the location",
			},
			&cli.Float64Flag{
				Name:  "long",
				Usage: "Longitude of the location",
			},
			&cli.Float64Flag{
				Name:    "radius",
				Aliases: []string{"r"},
				Usage:   "Search radius in kilometers",
				Value:   defaultRadiusKm,
			},
		},
		Action: nearbyAction,
	}
}

func nearbyAction(c *cli.Context) error {
	lat := c.Float64("lat")
	lng := c.Float64("long")
	radius := c.Float64("radius")

	if loc := c.String("location"); loc != "" {
		var err error
		lat, lng, err = geocodePlace(loc)
		if err != nil {
			return err
		}
	} else if lat == 0 && lng == 0 {
		return errors.New("location or latitude and longitude are required")
	}

	return listNearbyStations(c, c.String("db"), lat, lng, radius)
}

func geocodePlace(name string) (lat, lng float64, err error) {
	gominatim.SetServer("https://nominatim.openstreetmap.org/")
	qry := gominatim.SearchQuery{
		Q: name,
	}

	resp, err := qry.Get()
	if err != nil {
		return 0, 0, err
	}
	if len(resp) == 0 {
		return 0, 0, fmt.Errorf("no results found for location: %s", name)
	}
	fmt.Println("Location found:", resp[0].DisplayName)

	lat, err = strconv.ParseFloat(resp[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lng, err = strconv.ParseFloat(resp[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func listNearbyStations(c *cli.Context, dbPath string, lat, lng, radius float64) error {
	st, err := store.New(c.Context, dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		return fmt.Errorf("error initializing store: %w", err)
	}
	defer st.Close()

	nearby, err := st.NearbyStations(c.Context, lat, lng, radius*metersPerKm)
	if err != nil {
		return fmt.Errorf("error fetching nearby stations: %w", err)
	}

	for i := range nearby {
		station := &nearby[i]
		distance := gpx.Distance2D(lat, lng, station.Location.Lat, station.Location.Lng, true)

		fmt.Printf("%d. %s (%s)\n", i+1, station.Name, station.Address)
		fmt.Printf("   Distance: %.2f km\n", distance/metersPerKm)
		fmt.Printf("   Petrol: %s\n", priceLabel(station.PriceFor("petrol")))
		fmt.Printf("   Diesel: %s\n", priceLabel(station.PriceFor("diesel")))
		fmt.Printf("   Hours: %s\n", station.OperatingHours)
		fmt.Printf("   Coordinates: %.5f, %.5f\n\n", station.Location.Lat, station.Location.Lng)
	}

	fmt.Printf("Found %d stations within %g km radius\n", len(nearby), radius)
	return nil
}

func priceLabel(price float64, ok bool) string {
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("ksh %g", price)
}
