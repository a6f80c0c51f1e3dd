package transit

import "github.com/google/uuid"

// NewScenarioID generates a scenario id suitable for ScenarioCopy when
// the caller has no natural identifier of its own (e.g. an ad hoc
// what-if query rather than a named, persisted scenario).
func NewScenarioID() string {
	return uuid.NewString()
}

// ScenarioCopy produces a derived network that can be mutated (new
// stops, patterns, trips; route overrides) without mutating the base
// network other queries may still be reading (§4.6).
//
// The six scenario-duplicated arrays (stop ids, stop names, street
// vertices, distance tables, transfer lists, routes) are copied, so an
// index write on either network never reaches the other; the per-stop
// transfer lists and distance tables they hold stay shared until
// replaced. The other arrays are re-sliced to cap==len (three-index
// slice expressions): the backing array is shared until the first
// append, at which point Go allocates a fresh one because the capped
// slice has no spare capacity. Untouched structures — TripPattern
// objects, TripSchedule objects, the services list, stop coordinates —
// are shared by reference; a modification layer that edits a pattern
// must clone it first (out of scope here).
func (n *TransitNetwork) ScenarioCopy(scenarioID string) *TransitNetwork {
	cp := &TransitNetwork{
		ScenarioID: scenarioID,
		Timezone:   n.Timezone,
		CenterLat:  n.CenterLat,
		CenterLon:  n.CenterLon,

		stopIDForIndex:             cloneSlice(n.stopIDForIndex),
		stopNameForIndex:           cloneSlice(n.stopNameForIndex),
		streetVertexForStop:        cloneSlice(n.streetVertexForStop),
		stopToVertexDistanceTables: cloneSlice(n.stopToVertexDistanceTables),
		transfersForStop:           cloneSlice(n.transfersForStop),
		Routes:                     cloneSlice(n.Routes),

		// Shared by reference: growing these in the scenario still
		// needs the same cap==len discipline so a later append never
		// bleeds into the base network's view.
		Services: capSlice(n.Services),
		Patterns: capSlice(n.Patterns),

		stopZone:          capSlice(n.stopZone),
		stopParentStation: capSlice(n.stopParentStation),
		stopWheelchair:    capSlice(n.stopWheelchair),
		stopLat:           capSlice(n.stopLat),
		stopLon:           capSlice(n.stopLon),
	}

	cp.loadedFeedIDs = make(map[string]bool, len(n.loadedFeedIDs))
	for k, v := range n.loadedFeedIDs {
		cp.loadedFeedIDs[k] = v
	}

	cp.RebuildIndexes()

	return cp
}

// capSlice returns a slice header over the same backing array as s, but
// with capacity pinned to its current length, so neither s nor the
// returned slice can observe an append made through the other.
func capSlice[T any](s []T) []T {
	return s[:len(s):len(s)]
}

// cloneSlice returns an independent copy of s.
func cloneSlice[T any](s []T) []T {
	return append([]T(nil), s...)
}

// AddStop appends a new stop to the network (scenario use only — per
// §5's shared-resource policy, mutating a base network outside
// ScenarioCopy is a programmer error). streetVertex is the stop's
// street-graph linkage, or -1 to add it unlinked. Indexes are rebuilt
// before the new stop's index is returned.
func (n *TransitNetwork) AddStop(id string, lat, lon float64, streetVertex int) int {
	idx := n.StopCount()
	n.stopIDForIndex = append(n.stopIDForIndex, id)
	n.stopNameForIndex = append(n.stopNameForIndex, "")
	n.streetVertexForStop = append(n.streetVertexForStop, streetVertex)
	n.stopZone = append(n.stopZone, "")
	n.stopParentStation = append(n.stopParentStation, "")
	n.stopWheelchair = append(n.stopWheelchair, 0)
	n.stopLat = append(n.stopLat, lat)
	n.stopLon = append(n.stopLon, lon)
	n.RebuildIndexes()
	return idx
}
