// Package transit holds the in-memory transit network: the entities,
// indexes and build-time machinery that turn scheduled-transit feeds
// and a street network into a compact, query-ready graph for a
// RAPTOR-style search. See SPEC_FULL.md for the full design.
package transit

// DistanceTable maps a street vertex to its walking distance, in
// millimetres, from one stop. Built by the distance package; kept here
// (rather than in that package) so TransitNetwork doesn't need to
// import it, avoiding a cycle.
type DistanceTable map[int]int32

// emptyTransfers is the canonical empty transfer list, shared by every
// stop with no transfers so TransferFinder need not allocate one per
// unlinked stop. Identity comparison against this slice's header is a
// deliberate micro-optimization (design note "empty-list interning"),
// though correctness never depends on it.
var emptyTransfers = []int32{}

// TransitNetwork is the top-level, query-ready container: every
// relationship between its entities is an integer index, never a
// pointer graph (design note "dense numeric arrays").
//
// Fields are grouped as: identity/bookkeeping, the six arrays the
// scenario-copy policy (§4.6) explicitly duplicates on write
// (stopIdForIndex, stopNameForIndex, streetVertexForStop,
// stopToVertexDistanceTables, transfersForStop, routes), the arrays
// shared by reference across scenarios, and the rebuildable indexes.
type TransitNetwork struct {
	// ScenarioID is empty for a base network; scenario copies record
	// the id they were created with, which queries can use to key
	// their own caches.
	ScenarioID string

	// Timezone and CenterLat/CenterLon are metadata derived during
	// ingestion (§4.1 steps 9-10): the feed's time zone (first agency
	// with a parseable one, defaulting to UTC) and the mean coordinate
	// of all stops.
	Timezone  string
	CenterLat float64
	CenterLon float64

	loadedFeedIDs map[string]bool

	// --- scenario-duplicated arrays (§4.6, §9) ---
	stopIDForIndex             []string
	stopNameForIndex           []string
	streetVertexForStop        []int
	stopToVertexDistanceTables []DistanceTable // nil entry == unlinked/not built
	transfersForStop           [][]int32       // packed (target, distanceMM) pairs
	Routes                     []Route

	// --- shared-by-reference across scenarios (until individually
	// copy-on-modified by a higher-level scenario-modification layer,
	// out of scope here) ---
	Services []Service
	Patterns []*TripPattern

	stopZone          []string
	stopParentStation []string
	stopWheelchair    []int8
	stopLat           []float64
	stopLon           []float64

	// --- rebuildable indexes (never serialized) ---
	patternsForStop          [][]int
	stopForStreetVertex      map[int]int
	stopIndexForID           map[string]int
	frequencyEntryIndexForID map[string]frequencyRef
}

type frequencyRef struct {
	PatternIndex  int
	ScheduleIndex int
	EntryIndex    int
}

// New returns an empty, query-ready TransitNetwork (zero stops, zero
// patterns). Indexes are already consistent; RebuildIndexes is a no-op
// until the first feed is loaded.
func New() *TransitNetwork {
	return &TransitNetwork{
		loadedFeedIDs:            map[string]bool{},
		stopForStreetVertex:      map[int]int{},
		stopIndexForID:           map[string]int{},
		frequencyEntryIndexForID: map[string]frequencyRef{},
	}
}

// StopCount is the number of stops in this network (base + any scenario
// additions).
func (n *TransitNetwork) StopCount() int { return len(n.stopIDForIndex) }

// RouteCount is the number of routes in this network.
func (n *TransitNetwork) RouteCount() int { return len(n.Routes) }

// PatternCount is the number of trip patterns in this network.
func (n *TransitNetwork) PatternCount() int { return len(n.Patterns) }

// Stop reconstructs a Stop value for index i. Because stop fields live
// in parallel arrays (so scenario copy can duplicate only the ones that
// change), this assembles them on demand rather than storing []Stop
// directly.
func (n *TransitNetwork) Stop(i int) Stop {
	return Stop{
		ID:                 n.stopIDForIndex[i],
		Name:                n.stopNameForIndex[i],
		ZoneID:              n.stopZone[i],
		ParentStation:       n.stopParentStation[i],
		StreetVertex:        n.streetVertexForStop[i],
		WheelchairBoarding:  n.stopWheelchair[i],
		Lat:                 n.stopLat[i],
		Lon:                 n.stopLon[i],
	}
}

// StopIDForIndex returns the feed-scoped id of stop i.
func (n *TransitNetwork) StopIDForIndex(i int) string { return n.stopIDForIndex[i] }

// StreetVertexForStop returns the street-graph vertex linked to stop i,
// or -1 if the stop is unlinked.
func (n *TransitNetwork) StreetVertexForStop(i int) int { return n.streetVertexForStop[i] }

// SetStreetVertexForStop overwrites stop i's street-graph linkage. Used
// by the build CLI when it links stops to a street graph; callers must
// call RebuildIndexes afterwards so stopForStreetVertex stays
// consistent.
func (n *TransitNetwork) SetStreetVertexForStop(i, vertex int) {
	n.streetVertexForStop[i] = vertex
}

// StopLatLon returns the coordinate of stop i.
func (n *TransitNetwork) StopLatLon(i int) (lat, lon float64) {
	return n.stopLat[i], n.stopLon[i]
}

// TransfersForStop returns the packed (target, distanceMM) pairs
// leaving stop i. The returned slice must not be mutated in place;
// TransferFinder's copy-on-write policy depends on replacement, not
// in-place edits.
func (n *TransitNetwork) TransfersForStop(i int) []int32 {
	if i >= len(n.transfersForStop) || n.transfersForStop[i] == nil {
		return emptyTransfers
	}
	return n.transfersForStop[i]
}

// SetTransfersForStop replaces stop i's transfer list.
func (n *TransitNetwork) SetTransfersForStop(i int, transfers []int32) {
	for len(n.transfersForStop) <= i {
		n.transfersForStop = append(n.transfersForStop, nil)
	}
	n.transfersForStop[i] = transfers
}

// TransferListCount returns how many stops currently have a (possibly
// empty) transfer list entry. Used by tests asserting that
// findTransfers produced a list for every stop (§8).
func (n *TransitNetwork) TransferListCount() int { return len(n.transfersForStop) }

// StopToVertexDistances returns the distance table for stop i, or nil
// if the stop is unlinked or the table has not been built.
func (n *TransitNetwork) StopToVertexDistances(i int) DistanceTable {
	if i >= len(n.stopToVertexDistanceTables) {
		return nil
	}
	return n.stopToVertexDistanceTables[i]
}

// SetStopToVertexDistances replaces stop i's distance table.
func (n *TransitNetwork) SetStopToVertexDistances(i int, table DistanceTable) {
	for len(n.stopToVertexDistanceTables) <= i {
		n.stopToVertexDistanceTables = append(n.stopToVertexDistanceTables, nil)
	}
	n.stopToVertexDistanceTables[i] = table
}

// PatternsForStop returns the indices of every pattern touching stop i,
// built by RebuildIndexes.
func (n *TransitNetwork) PatternsForStop(i int) []int {
	if i >= len(n.patternsForStop) {
		return nil
	}
	return n.patternsForStop[i]
}

// StopForStreetVertex is the inverse of StreetVertexForStop.
func (n *TransitNetwork) StopForStreetVertex(vertex int) (stopIndex int, ok bool) {
	stopIndex, ok = n.stopForStreetVertex[vertex]
	return
}

// StopIndexForID is the inverse of StopIDForIndex.
func (n *TransitNetwork) StopIndexForID(id string) (int, bool) {
	i, ok := n.stopIndexForID[id]
	return i, ok
}

// ActiveServicesForDate returns the bitset of service indices active on
// the given date (feed-defined format, typically YYYYMMDD).
func (n *TransitNetwork) ActiveServicesForDate(date string) Bitset {
	bs := NewBitset(len(n.Services))
	for i, svc := range n.Services {
		if svc.ActiveOn != nil && svc.ActiveOn(date) {
			bs.Set(i)
		}
	}
	return bs
}

// RouteMode returns the Mode of the route a pattern belongs to.
func (n *TransitNetwork) RouteMode(p *TripPattern) Mode {
	return n.Routes[p.RouteIndex].Mode
}
