package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tkrajina/gpxgo/gpx"

	"fuelmap/internal/geoloc"
	"fuelmap/pkg/geo"
	"fuelmap/pkg/stations"
)

// StationWithDistance pairs a station with its distance from the
// search center, in meters.
type StationWithDistance struct {
	stations.Station
	Distance float64 `json:"distance_meters"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	last, err := s.store.LatestDate(r.Context())
	if err != nil {
		s.logger.Error("error getting latest snapshot date", "error", err)
	}
	resp := map[string]any{"status": "ok"}
	if last != nil {
		resp["last_snapshot"] = last.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	list, err := s.latestStations(r.Context())
	if err != nil {
		http.Error(w, "Error loading stations: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid station ID", http.StatusBadRequest)
		return
	}
	list, err := s.latestStations(r.Context())
	if err != nil {
		http.Error(w, "Error loading stations: "+err.Error(), http.StatusInternalServerError)
		return
	}
	for i := range list {
		if list[i].ID == id {
			writeJSON(w, http.StatusOK, list[i])
			return
		}
	}
	http.Error(w, "Station not found", http.StatusNotFound)
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	location := query.Get("location")
	fuelType := query.Get("fuel")
	if fuelType == "" {
		fuelType = "petrol"
	}

	radius := DefaultRadius
	if radiusStr := query.Get("radius"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err == nil && parsed > 0 {
			radius = parsed
		}
	}

	var lat, lng float64
	var err error
	if location != "" {
		lat, lng, err = s.geocode(location)
		if err != nil {
			http.Error(w, "Location not found: "+err.Error(), http.StatusNotFound)
			return
		}
	} else {
		lat, err = strconv.ParseFloat(query.Get("lat"), 64)
		if err != nil {
			http.Error(w, "Invalid latitude value", http.StatusBadRequest)
			return
		}
		lng, err = strconv.ParseFloat(query.Get("lng"), 64)
		if err != nil {
			http.Error(w, "Invalid longitude value", http.StatusBadRequest)
			return
		}
	}

	nearby, err := s.store.NearbyStations(r.Context(), lat, lng, radius*1000)
	if err != nil {
		http.Error(w, "Error finding nearby stations: "+err.Error(), http.StatusInternalServerError)
		return
	}

	results := make([]StationWithDistance, 0, len(nearby))
	for i := range nearby {
		results = append(results, StationWithDistance{
			Station:  nearby[i],
			Distance: gpx.Distance2D(lat, lng, nearby[i].Location.Lat, nearby[i].Location.Lng, true),
		})
	}
	sortByFuelPrice(results, fuelType)

	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleGeolocate(w http.ResponseWriter, r *http.Request) {
	result, err := s.geoip.Lookup(r.Context())
	if err != nil {
		s.logger.Warn("geolocation lookup failed, using fallback", "error", err)
		writeJSON(w, http.StatusOK, s.fallback)
		return
	}
	loc := geoloc.Location{
		CountryName: result.CountryName,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		Currency:    result.Currency,
	}
	if loc.CountryName == "" {
		loc.CountryName = s.fallback.CountryName
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleDirections(w http.ResponseWriter, r *http.Request) {
	if !s.directions.Configured() {
		http.Error(w, "Directions not configured", http.StatusServiceUnavailable)
		return
	}

	query := r.URL.Query()
	origin, err := parseCoordinates(query.Get("origin_lat"), query.Get("origin_lng"))
	if err != nil {
		http.Error(w, "Invalid origin: "+err.Error(), http.StatusBadRequest)
		return
	}
	dest, err := parseCoordinates(query.Get("dest_lat"), query.Get("dest_lng"))
	if err != nil {
		http.Error(w, "Invalid destination: "+err.Error(), http.StatusBadRequest)
		return
	}

	routes, err := s.directions.Routes(r.Context(), origin, dest)
	if err != nil {
		http.Error(w, "Error fetching directions: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"routes": routes})
}

// sortByFuelPrice orders by price for the requested fuel (cheapest
// first), stations without that fuel after priced ones, ties broken by
// distance.
func sortByFuelPrice(results []StationWithDistance, fuelType string) {
	sort.Slice(results, func(i, j int) bool {
		priceI, okI := results[i].PriceFor(fuelType)
		priceJ, okJ := results[j].PriceFor(fuelType)

		if okI && okJ {
			if priceI != priceJ {
				return priceI < priceJ
			}
			return results[i].Distance < results[j].Distance
		}
		if okI != okJ {
			return okI
		}
		return results[i].Distance < results[j].Distance
	})
}

func parseCoordinates(latStr, lngStr string) (geo.Coordinates, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return geo.Coordinates{}, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return geo.Coordinates{}, err
	}
	return geo.Coordinates{Lat: lat, Lng: lng}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing useful left to do.
		return
	}
}
