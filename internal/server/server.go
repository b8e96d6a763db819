// Package server exposes the station dataset, nearby search,
// geolocation and directions as a JSON API for map clients.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"
	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"

	"fuelmap/internal/geoloc"
	"fuelmap/internal/store"
	"fuelmap/pkg/directions"
	"fuelmap/pkg/stations"
)

const (
	DefaultRadius = 5.0 // km
	nominatimURL  = "https://nominatim.openstreetmap.org/"

	updateInterval = 6 * time.Hour
	rateLimit      = 20 // requests per IP per minute
)

// Server wires the storage, clients and HTTP surface together.
type Server struct {
	store      *store.Store
	stations   *stations.Client
	geoip      geoloc.Lookup
	directions *directions.Client
	fallback   geoloc.Location
	geocache   *cache.Cache
	logger     *httplog.Logger
}

// New creates a server. fallback is the location published when the
// geolocation lookup fails.
func New(st *store.Store, sc *stations.Client, gc geoloc.Lookup, dc *directions.Client, fallback geoloc.Location, logger *httplog.Logger) *Server {
	return &Server{
		store:      st,
		stations:   sc,
		geoip:      gc,
		directions: dc,
		fallback:   fallback,
		geocache:   cache.New(30*time.Minute, 90*time.Minute),
		logger:     logger,
	}
}

// Router builds the chi router with the middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(rateLimit, time.Minute))

	r.Get("/health", s.handleHealth)
	r.Get("/api/stations", s.handleStations)
	r.Get("/api/stations/{id}", s.handleStation)
	r.Get("/api/nearby", s.handleNearby)
	r.Get("/api/geolocate", s.handleGeolocate)
	r.Get("/api/directions", s.handleDirections)

	return r
}

// RunUpdater refreshes the snapshot store from the station API on an
// interval until the context is cancelled. It fetches immediately on
// start so a fresh deployment serves data without waiting a tick.
func (s *Server) RunUpdater(ctx context.Context) {
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		if err := s.refresh(ctx); err != nil {
			s.logger.Error("error updating stations", "error", err)
		} else {
			s.logger.Info("station update completed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) refresh(ctx context.Context) error {
	if !s.stations.Configured() {
		return nil
	}
	list, err := s.stations.FetchStations(ctx)
	if err != nil {
		return fmt.Errorf("error fetching stations: %w", err)
	}
	return s.store.SaveSnapshot(ctx, time.Now(), list)
}

// latestStations serves from the snapshot store, falling back to a live
// fetch when the store is still empty.
func (s *Server) latestStations(ctx context.Context) ([]stations.Station, error) {
	list, err := s.store.LatestStations(ctx)
	if err == nil {
		return list, nil
	}
	if !s.stations.Configured() {
		return nil, err
	}
	list, ferr := s.stations.FetchStations(ctx)
	if ferr != nil {
		return nil, fmt.Errorf("error fetching stations: %w", ferr)
	}
	if serr := s.store.SaveSnapshot(ctx, time.Now(), list); serr != nil {
		s.logger.Warn("error saving snapshot", "error", serr)
	}
	return list, nil
}

// geocode resolves a place name to coordinates via Nominatim, memoized.
func (s *Server) geocode(location string) (lat, lng float64, err error) {
	gominatim.SetServer(nominatimURL)
	if cached, ok := s.geocache.Get(location); ok {
		return searchResultToLatLon(cached.(gominatim.SearchResult))
	}

	query := gominatim.SearchQuery{
		Q: url.QueryEscape(location),
	}
	results, err := query.Get()
	if err != nil {
		return 0, 0, fmt.Errorf("geocoding error: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("no results found for location: %s", location)
	}
	s.geocache.Set(location, results[0], cache.DefaultExpiration)

	return searchResultToLatLon(results[0])
}

func searchResultToLatLon(result gominatim.SearchResult) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(result.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing latitude: %w", err)
	}
	lng, err = strconv.ParseFloat(result.Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("error parsing longitude: %w", err)
	}
	return lat, lng, nil
}
