// Package distance builds, for every transit stop, a table of walking
// distances (in millimetres) from that stop to every street vertex
// within a radius (§4.3). Build is embarrassingly parallel across
// stops: each search is independent and uses its own Router instance.
package distance

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transit"
)

// DefaultRadiusMeters is the walk-distance limit for stop-to-vertex
// tables (§6).
const DefaultRadiusMeters = 2000

// Zone bounds a lat/lon rectangle. Build only (re)computes tables for
// stops within Zone, if given; this lets a scenario addition rebuild
// distance tables for just the stops it touches instead of the whole
// network.
type Zone struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func (z *Zone) contains(lat, lon float64) bool {
	if z == nil {
		return true
	}
	return lat >= z.MinLat && lat <= z.MaxLat && lon >= z.MinLon && lon <= z.MaxLon
}

// Config tunes a Build call. Zero value is the documented default
// (2000m radius, one worker per CPU).
type Config struct {
	RadiusMeters float64
	Workers      int
	Logger       *slog.Logger

	// Report, if set, receives an UnlinkedStopWarning (§7) for every
	// stop Build finds has no street-vertex linkage. Linkage is only
	// known for certain at this point in the pipeline, after feed
	// loading has already produced its own BuildReport.
	Report *transit.BuildReport
}

func (c Config) withDefaults() Config {
	if c.RadiusMeters <= 0 {
		c.RadiusMeters = DefaultRadiusMeters
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// RouterFactory returns a fresh, single-use street.Router for one
// stop's search. A factory (rather than a single shared Router) is
// required because the per-stop fan-out is concurrent and each search
// needs independent state (§5).
type RouterFactory func() street.Router

// Build computes the stop-to-vertex distance table for every stop
// whose coordinate lies within zone (every stop, if zone is nil),
// running one street search per stop in parallel over cfg.Workers
// goroutines. Unlinked stops yield no table (not an error, §4.3).
func Build(ctx context.Context, net *transit.TransitNetwork, routers RouterFactory, zone *Zone, cfg Config) error {
	cfg = cfg.withDefaults()

	type job struct{ stopIndex int }
	type result struct {
		stopIndex int
		table     transit.DistanceTable
	}

	jobs := make(chan job, net.StopCount())
	results := make(chan result, net.StopCount())

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result{stopIndex: j.stopIndex, table: buildOneStop(net, routers, cfg, j.stopIndex)}
			}
		}()
	}

	submitted := 0
	for i := 0; i < net.StopCount(); i++ {
		lat, lon := net.StopLatLon(i)
		if !zone.contains(lat, lon) {
			continue
		}
		jobs <- job{stopIndex: i}
		submitted++
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	linked, unlinked := 0, 0
	for r := range results {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		net.SetStopToVertexDistances(r.stopIndex, r.table)
		if r.table != nil {
			linked++
		} else {
			unlinked++
			if cfg.Report != nil {
				cfg.Report.UnlinkedStops = append(cfg.Report.UnlinkedStops, transit.UnlinkedStopWarning{StopID: net.StopIDForIndex(r.stopIndex)})
			}
		}
	}

	cfg.Logger.Info("built stop distance tables", "stops_considered", submitted, "linked", linked, "unlinked", unlinked)

	return nil
}

func buildOneStop(net *transit.TransitNetwork, routers RouterFactory, cfg Config, stopIndex int) transit.DistanceTable {
	vertex := net.StreetVertexForStop(stopIndex)
	if vertex < 0 {
		return nil
	}

	router := routers()
	router.SetOrigin(vertex)
	router.SetDistanceLimitMeters(cfg.RadiusMeters)
	router.SetQuantityToMinimize(street.DistanceMM)
	if err := router.Route(); err != nil {
		cfg.Logger.Error("street search failed", "stop_index", stopIndex, "error", err)
		return nil
	}

	reached := router.ReachedVertices()
	table := make(transit.DistanceTable, len(reached))
	for v, d := range reached {
		table[v] = d
	}
	return table
}
