// Package filtered derives, per query, the subset of a TransitNetwork's
// patterns relevant to a (mode set, service bitset) pair (§4.5), with a
// small per-network cache so concurrent queries on the same key share
// one derivation.
package filtered

import (
	"log/slog"

	"tidbyt.dev/transitnetwork/transit"
)

// FilteredPattern is one pattern's query-scoped view: only the
// schedules active on at least one service in the query's bitset,
// split by schedule-vs-frequency, plus the overtaking verdict used by
// the search to pick a departure-scan strategy.
type FilteredPattern struct {
	PatternIndex int

	RunningScheduledTrips []*transit.TripSchedule
	RunningFrequencyTrips []*transit.TripSchedule

	// NoScheduledOvertaking is true iff, for every consecutive pair of
	// scheduled trips ordered by first departure, the earlier trip never
	// departs any stop after the following trip does.
	NoScheduledOvertaking bool
}

// FilteredPatterns is the per-query view of an entire network: one
// slot per pattern index (nil where the pattern is filtered out) plus
// bitsets over pattern index for the two trip kinds.
type FilteredPatterns struct {
	Patterns                 []*FilteredPattern
	RunningScheduledPatterns transit.Bitset
	RunningFrequencyPatterns transit.Bitset
}

// Derive builds the FilteredPatterns view of net for the given query
// key. It does not consult or populate a Cache; use Cache.Get for the
// cached, concurrency-shared entry point.
func Derive(net *transit.TransitNetwork, modeSet transit.ModeSet, serviceBitset transit.Bitset, logger *slog.Logger) *FilteredPatterns {
	if logger == nil {
		logger = slog.Default()
	}

	patternCount := net.PatternCount()
	out := &FilteredPatterns{
		Patterns:                 make([]*FilteredPattern, patternCount),
		RunningScheduledPatterns: transit.NewBitset(patternCount),
		RunningFrequencyPatterns: transit.NewBitset(patternCount),
	}

	for i, p := range net.Patterns {
		if !p.ServicesActive.Intersects(serviceBitset) {
			continue
		}
		if !modeSet.Contains(net.RouteMode(p)) {
			continue
		}

		fp := deriveOnePattern(i, p, serviceBitset)
		out.Patterns[i] = fp

		if len(fp.RunningScheduledTrips) > 0 {
			out.RunningScheduledPatterns.Set(i)
		}
		if len(fp.RunningFrequencyTrips) > 0 {
			out.RunningFrequencyPatterns.Set(i)
		}
		if !fp.NoScheduledOvertaking {
			logger.Warn("scheduled overtaking detected in pattern", "pattern_index", i, "route_index", p.RouteIndex)
		}
	}

	return out
}

func deriveOnePattern(index int, p *transit.TripPattern, serviceBitset transit.Bitset) *FilteredPattern {
	fp := &FilteredPattern{PatternIndex: index}

	for _, s := range p.Schedules {
		if !serviceBitset.Get(s.ServiceCode) {
			continue
		}
		if s.IsFrequency() {
			fp.RunningFrequencyTrips = append(fp.RunningFrequencyTrips, s)
		} else {
			fp.RunningScheduledTrips = append(fp.RunningScheduledTrips, s)
		}
	}

	fp.NoScheduledOvertaking = noScheduledOvertaking(fp.RunningScheduledTrips)

	return fp
}

// noScheduledOvertaking checks, over every consecutive pair of trips
// (already in first-departure order, since Schedules is kept sorted by
// TripPattern.sortSchedulesByFirstDeparture) and every stop offset,
// that the earlier trip's departure never exceeds the later trip's.
// A pattern with zero or one running trip trivially has no overtaking.
func noScheduledOvertaking(trips []*transit.TripSchedule) bool {
	for i := 1; i < len(trips); i++ {
		a, b := trips[i-1], trips[i]
		n := len(a.Departures)
		if len(b.Departures) < n {
			n = len(b.Departures)
		}
		for s := 0; s < n; s++ {
			if a.Departures[s] > b.Departures[s] {
				return false
			}
		}
	}
	return true
}
