// Package directory holds the fetched station dataset and its load
// state. The dataset is fetched at most once per directory and is
// read-only for consumers.
package directory

import (
	"context"
	"log/slog"
	"sync"

	"fuelmap/pkg/stations"
)

// State is the directory load state. Idle applies only when no station
// endpoint is configured; with one configured, Load moves Loading to
// exactly one of Loaded or Failed and never back.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Fetcher is the station dataset dependency.
type Fetcher interface {
	Configured() bool
	FetchStations(ctx context.Context) ([]stations.Station, error)
}

// Directory owns the station collection.
type Directory struct {
	mu      sync.Mutex
	state   State
	list    []stations.Station
	byID    map[int64]stations.Station
	errMsg  string
	started bool
	fetcher Fetcher
	log     *slog.Logger
}

// New creates an idle directory.
func New(fetcher Fetcher, logger *slog.Logger) *Directory {
	return &Directory{
		byID:    make(map[int64]stations.Station),
		fetcher: fetcher,
		log:     logger,
	}
}

// Load fetches the dataset once. With no endpoint configured the
// directory stays idle and empty: not loading, no error. That is
// deliberate degradation, not a failure. Subsequent calls are no-ops.
func (d *Directory) Load(ctx context.Context) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	if !d.fetcher.Configured() {
		d.log.Debug("no station endpoint configured, directory stays empty")
		d.mu.Unlock()
		return
	}
	d.state = StateLoading
	d.mu.Unlock()

	list, err := d.fetcher.FetchStations(ctx)
	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = StateFailed
		d.errMsg = err.Error()
		d.log.Warn("station fetch failed", "error", err)
		return
	}
	d.list = list
	d.byID = make(map[int64]stations.Station, len(list))
	for _, st := range list {
		d.byID[st.ID] = st
	}
	d.state = StateLoaded
	d.log.Debug("stations loaded", "count", len(list))
}

// State returns the load state.
func (d *Directory) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Err returns the failure message, empty unless State is Failed.
func (d *Directory) Err() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

// Stations returns a copy of the loaded dataset.
func (d *Directory) Stations() []stations.Station {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]stations.Station, len(d.list))
	copy(out, d.list)
	return out
}

// Station looks up a station by its stable ID.
func (d *Directory) Station(id int64) (stations.Station, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.byID[id]
	return st, ok
}
