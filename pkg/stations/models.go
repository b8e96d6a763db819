package stations

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"fuelmap/pkg/geo"
)

// FuelPrice is a single priced fuel type. Types are not guaranteed unique
// or exhaustive within a station.
type FuelPrice struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// StockLevels carries qualitative stock indicators ("low", "high"). The
// values are display strings and are not validated.
type StockLevels struct {
	Diesel string `json:"diesel"`
	Petrol string `json:"petrol"`
}

// Station is a fuel-selling location with price, service and stock
// metadata. IDs are stable for the lifetime of a loaded dataset and
// stations are never mutated after normalization.
type Station struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Address           string          `json:"address"`
	Location          geo.Coordinates `json:"location"`
	FuelPrices        []FuelPrice     `json:"fuel_prices"`
	Services          []string        `json:"services"`
	OperatingHours    string          `json:"operating_hours"`
	Rating            float64         `json:"rating"`
	AdditiveAvailable bool            `json:"additive_available"`
	RewardsSupported  bool            `json:"rewards_supported"`
	IsPartnerStation  bool            `json:"is_partner_station"`
	FuelStockLevels   StockLevels     `json:"fuel_stock_levels"`
	LastUpdated       string          `json:"last_updated"`
}

// PriceFor returns the first price listed for the given fuel type.
func (s *Station) PriceFor(fuelType string) (float64, bool) {
	for _, p := range s.FuelPrices {
		if strings.EqualFold(p.Type, fuelType) {
			return p.Price, true
		}
	}
	return 0, false
}

// Rated reports whether the station carries a usable rating. A rating
// that failed to parse is NaN and means "unrated", never zero.
func (s *Station) Rated() bool {
	return !math.IsNaN(s.Rating)
}

// rawStation mirrors the wire shape of a station record. Rating arrives
// as either a number or a numeric-looking string, so it is captured raw
// and parsed during normalization.
type rawStation struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	Address           string          `json:"address"`
	FuelPrices        []FuelPrice     `json:"fuel_prices"`
	Services          []string        `json:"services"`
	OperatingHours    string          `json:"operating_hours"`
	Rating            json.RawMessage `json:"rating"`
	AdditiveAvailable bool            `json:"additive_available"`
	RewardsSupported  bool            `json:"rewards_supported"`
	IsPartnerStation  bool            `json:"is_partner_station"`
	FuelStockLevels   StockLevels     `json:"fuel_stock_levels"`
	LastUpdated       string          `json:"last_updated"`
}

// parseRating parses a rating that may be a JSON number, a quoted
// numeric string, or absent. Anything unparseable yields NaN.
func parseRating(raw json.RawMessage) float64 {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
