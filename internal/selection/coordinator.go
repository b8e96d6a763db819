// Package selection owns the "currently selected station" state shared
// by the list and map views. Both read and write it exclusively through
// the coordinator, never through each other.
package selection

import (
	"sync"

	"fuelmap/pkg/stations"
)

// Observer is notified on every selection transition, including
// idempotent re-selects. A nil station means the selection was cleared.
type Observer func(selected *stations.Station)

// FocusHandler receives the station to focus the camera on. It fires on
// every select of a non-nil station, including re-selecting the current
// one, so re-clicking re-centers the map.
type FocusHandler func(st stations.Station)

// Coordinator holds at most one selected station and the detail-view
// state tied to it.
type Coordinator struct {
	mu        sync.Mutex
	selected  *stations.Station
	detail    *stations.Station
	observers []Observer
	focus     FocusHandler
}

// New creates an unselected coordinator.
func New() *Coordinator {
	return &Coordinator{}
}

// Subscribe registers an observer of selection transitions.
func (c *Coordinator) Subscribe(fn Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// SetFocusHandler sets the camera-focus side effect.
func (c *Coordinator) SetFocusHandler(fn FocusHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = fn
}

// Select transitions the selection. Selecting the station already
// selected leaves the state unchanged but still fires the focus side
// effect. Selecting nil clears the selection and closes any open
// detail view tied to the previous selection.
func (c *Coordinator) Select(st *stations.Station) {
	c.mu.Lock()
	if st == nil {
		c.selected = nil
		c.detail = nil
	} else {
		cp := *st
		c.selected = &cp
	}
	selected := c.selected
	focus := c.focus
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(selected)
	}
	if st != nil && focus != nil {
		focus(*st)
	}
}

// Selected returns a copy of the current selection, or nil.
func (c *Coordinator) Selected() *stations.Station {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	cp := *c.selected
	return &cp
}

// SelectedID returns the selected station's ID, if any.
func (c *Coordinator) SelectedID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return 0, false
	}
	return c.selected.ID, true
}

// OpenDetail opens the detail view for a station.
func (c *Coordinator) OpenDetail(st stations.Station) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := st
	c.detail = &cp
}

// CloseDetail closes the detail view.
func (c *Coordinator) CloseDetail() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = nil
}

// Detail returns the station shown in the detail view, or nil.
func (c *Coordinator) Detail() *stations.Station {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detail == nil {
		return nil
	}
	cp := *c.detail
	return &cp
}
