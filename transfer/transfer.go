// Package transfer precomputes walking transfers between stops through
// the street graph (§4.4). TransferFinder runs a bounded-radius street
// search from every stop's street vertex and prunes the result with a
// pattern-based heuristic before storing it as the network's packed
// transfer list.
package transfer

import (
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transit"
)

// DefaultRadiusMeters is the walk radius for stop-to-stop transfer
// discovery (§6).
const DefaultRadiusMeters = 1000

// RouterFactory returns a fresh, single-use street.Router for one
// stop's search (mirrors distance.RouterFactory; kept separate to
// avoid a package import solely for this type).
type RouterFactory func() street.Router

// Finder computes transfers for a TransitNetwork.
type Finder struct {
	Routers      RouterFactory
	RadiusMeters float64
	Workers      int
	Logger       *slog.Logger
}

// NewFinder returns a Finder with the documented defaults (1000m
// radius, one worker per CPU).
func NewFinder(routers RouterFactory) *Finder {
	return &Finder{
		Routers:      routers,
		RadiusMeters: DefaultRadiusMeters,
		Workers:      runtime.NumCPU(),
		Logger:       slog.Default(),
	}
}

func (f *Finder) workers() int {
	if f.Workers <= 0 {
		return runtime.NumCPU()
	}
	return f.Workers
}

func (f *Finder) radius() float64 {
	if f.RadiusMeters <= 0 {
		return DefaultRadiusMeters
	}
	return f.RadiusMeters
}

func (f *Finder) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}

// FindTransfers computes (or extends) net's transfer lists.
//
// If net already has a transfer-list entry for every stop, this is a
// full rebuild: every stop is reprocessed. Otherwise it is a scenario
// extension (§4.4 "Scenario behavior"): only stops beyond the existing
// list length are processed in the parallel pass, and any transfer
// landing on a pre-existing stop gets a reverse transfer appended to
// that stop's list afterwards, sequentially, via copy-on-write.
func (f *Finder) FindTransfers(net *transit.TransitNetwork) {
	existing := net.TransferListCount()
	stopCount := net.StopCount()

	startAt := 0
	if existing > 0 && existing < stopCount {
		startAt = existing
	}

	type result struct {
		stopIndex int
		transfers []int32
	}

	jobs := make(chan int, stopCount-startAt)
	results := make(chan result, stopCount-startAt)

	var wg sync.WaitGroup
	for w := 0; w < f.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stopIndex := range jobs {
				results <- result{stopIndex: stopIndex, transfers: f.findTransfersForStop(net, stopIndex)}
			}
		}()
	}

	for i := startAt; i < stopCount; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	reverse := map[int][]int32{} // pre-existing stop -> appended (target, dist) pairs
	for r := range results {
		net.SetTransfersForStop(r.stopIndex, r.transfers)
		if startAt > 0 {
			for i := 0; i+1 < len(r.transfers); i += 2 {
				target := int(r.transfers[i])
				if target < startAt {
					reverse[target] = append(reverse[target], int32(r.stopIndex), r.transfers[i+1])
				}
			}
		}
	}

	// Sequential reverse-transfer post-processing (§4.4): copy-on-write
	// so base-network lists already shared by another scenario are
	// never mutated in place.
	for target, pairs := range reverse {
		existingPairs := net.TransfersForStop(target)
		merged := make([]int32, len(existingPairs), len(existingPairs)+len(pairs))
		copy(merged, existingPairs)
		merged = append(merged, pairs...)
		net.SetTransfersForStop(target, merged)
	}

	f.logger().Info("computed transfers", "stops_processed", stopCount-startAt, "reverse_transfers", len(reverse))
}

// findTransfersForStop runs one stop's street search and applies
// retainClosestStopsOnPatterns.
func (f *Finder) findTransfersForStop(net *transit.TransitNetwork, stopIndex int) []int32 {
	vertex := net.StreetVertexForStop(stopIndex)
	if vertex < 0 {
		return nil // canonical empty list, assigned by TransfersForStop on read
	}

	router := f.Routers()
	router.SetOrigin(vertex)
	router.SetDistanceLimitMeters(f.radius())
	router.SetQuantityToMinimize(street.DistanceMM)
	if err := router.Route(); err != nil {
		f.logger().Error("transfer street search failed", "stop_index", stopIndex, "error", err)
		return nil
	}

	reached := router.ReachedStops()

	kept := retainClosestStopsOnPatterns(net, stopIndex, reached)

	pairs := make([]int32, 0, len(kept)*2)
	targets := make([]int, 0, len(kept))
	for target := range kept {
		targets = append(targets, target)
	}
	sort.Ints(targets)
	for _, target := range targets {
		pairs = append(pairs, int32(target), kept[target])
	}
	return pairs
}

// retainClosestStopsOnPatterns reduces reached to at most one entry per
// pattern in the network: the nearest stop reached on that pattern
// (§4.4 step 3). The source stop itself is excluded and never appears
// in the result. Reached stops that belong to no pattern are kept
// as-is by the final loop below.
func retainClosestStopsOnPatterns(net *transit.TransitNetwork, source int, reached map[int]int32) map[int]int32 {
	bestForPattern := map[int]struct {
		stop int
		dist int32
	}{}

	for stop, dist := range reached {
		if stop == source {
			continue // excluded from the per-pattern minimum search
		}
		for _, patternIndex := range net.PatternsForStop(stop) {
			best, ok := bestForPattern[patternIndex]
			if !ok || dist < best.dist {
				bestForPattern[patternIndex] = struct {
					stop int
					dist int32
				}{stop: stop, dist: dist}
			}
		}
	}

	kept := map[int]int32{}
	for _, best := range bestForPattern {
		if existing, ok := kept[best.stop]; !ok || best.dist < existing {
			kept[best.stop] = best.dist
		}
	}

	// Stops reached but touching no pattern at all (shouldn't normally
	// happen, since every linked stop belongs to some pattern) fall
	// through untouched so no valid transfer is silently dropped.
	for stop, dist := range reached {
		if stop != source && len(net.PatternsForStop(stop)) == 0 {
			if existing, ok := kept[stop]; !ok || dist < existing {
				kept[stop] = dist
			}
		}
	}

	return kept
}
