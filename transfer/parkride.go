package transfer

import (
	"log/slog"

	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transit"
)

// ParkRideRadiusMeters is the walk radius for park-and-ride access
// searches (§4.4).
const ParkRideRadiusMeters = 500

// ParkRideLocation is a park-and-ride lot, identified by an external id
// and linked to a street vertex the same way a stop is.
type ParkRideLocation struct {
	ID           string
	StreetVertex int
}

// ParkRideTransfer is the closest stop on one pattern reachable on foot
// from a park-and-ride location, with the full back-pointer state so
// the walk path can be reconstructed on demand rather than eagerly.
type ParkRideTransfer struct {
	PatternIndex int
	StopIndex    int
	DistanceMM   int32
	State        *street.State
}

// FindParkRideTransfers computes, for every location, the closest
// transit stop on each pattern within ParkRideRadiusMeters (§4.4
// "ParkRide transfers"). Locations with no reachable stop are counted
// as unconnected and logged, not treated as an error.
func (f *Finder) FindParkRideTransfers(net *transit.TransitNetwork, locations []ParkRideLocation) map[string][]ParkRideTransfer {
	out := make(map[string][]ParkRideTransfer, len(locations))
	unconnected := 0

	for _, loc := range locations {
		transfers := f.findParkRideTransfersForLocation(net, loc)
		if len(transfers) == 0 {
			unconnected++
		}
		out[loc.ID] = transfers
	}

	logger := f.logger()
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("computed park-and-ride transfers", "locations", len(locations), "unconnected", unconnected)

	return out
}

func (f *Finder) findParkRideTransfersForLocation(net *transit.TransitNetwork, loc ParkRideLocation) []ParkRideTransfer {
	router := f.Routers()
	router.SetOrigin(loc.StreetVertex)
	router.SetDistanceLimitMeters(ParkRideRadiusMeters)
	router.SetQuantityToMinimize(street.DistanceMM)
	if err := router.Route(); err != nil {
		f.logger().Error("park-and-ride street search failed", "location_id", loc.ID, "error", err)
		return nil
	}

	reached := router.ReachedStops()

	bestForPattern := map[int]struct {
		stop int
		dist int32
	}{}
	for stop, dist := range reached {
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

	transfers := make([]ParkRideTransfer, 0, len(bestForPattern))
	for patternIndex, best := range bestForPattern {
		vertex := net.StreetVertexForStop(best.stop)
		transfers = append(transfers, ParkRideTransfer{
			PatternIndex: patternIndex,
			StopIndex:    best.stop,
			DistanceMM:   best.dist,
			State:        router.StateAtVertex(vertex),
		})
	}
	return transfers
}
