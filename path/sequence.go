package path

import (
	"fmt"
	"strings"

	"tidbyt.dev/transitnetwork/transit"
)

// PatternSequence is an itinerary expressed as an ordered list of
// pattern boardings, derived directly from Reconstruct's legs.
type PatternSequence struct {
	Patterns    []int
	BoardStops  []int
	AlightStops []int
	RideSeconds []int
	WaitSeconds []int
}

// NewPatternSequence assembles a PatternSequence from reconstructed
// legs, in the order Reconstruct already returns them (origin to
// destination).
func NewPatternSequence(legs []Leg) PatternSequence {
	seq := PatternSequence{
		Patterns:    make([]int, len(legs)),
		BoardStops:  make([]int, len(legs)),
		AlightStops: make([]int, len(legs)),
		RideSeconds: make([]int, len(legs)),
		WaitSeconds: make([]int, len(legs)),
	}
	for i, leg := range legs {
		seq.Patterns[i] = leg.PatternIndex
		seq.BoardStops[i] = leg.BoardStop
		seq.AlightStops[i] = leg.AlightStop
		seq.RideSeconds[i] = leg.InVehicleSeconds
		seq.WaitSeconds[i] = leg.WaitSeconds
	}
	return seq
}

// RouteSequence is a PatternSequence with patterns replaced by the
// routes they belong to. Two itineraries that differ only in which
// pattern of the same route they used collapse into one RouteSequence,
// since the rider experiences them identically.
type RouteSequence struct {
	Routes      []int
	BoardStops  []int
	AlightStops []int
	RideSeconds []int
	WaitSeconds []int
}

// RouteSequence derives the route-level view of seq against net, whose
// Patterns slice resolves each pattern's RouteIndex.
func (seq PatternSequence) RouteSequence(net *transit.TransitNetwork) RouteSequence {
	routes := make([]int, len(seq.Patterns))
	for i, p := range seq.Patterns {
		routes[i] = net.Patterns[p].RouteIndex
	}
	return RouteSequence{
		Routes:      routes,
		BoardStops:  seq.BoardStops,
		AlightStops: seq.AlightStops,
		RideSeconds: seq.RideSeconds,
		WaitSeconds: seq.WaitSeconds,
	}
}

// Key returns a value equal for two RouteSequences iff they have the
// same route sequence and the same board/alight stop sequence —
// exactly the equality used for itinerary-class deduplication (§4.7).
// Ride/wait seconds are deliberately excluded: two itineraries on the
// same routes and stops are the same itinerary class even if one ran a
// few seconds late.
func (rs RouteSequence) Key() string {
	var b strings.Builder
	for i := range rs.Routes {
		fmt.Fprintf(&b, "%d:%d:%d;", rs.Routes[i], rs.BoardStops[i], rs.AlightStops[i])
	}
	return b.String()
}

// TotalRideSeconds sums every leg's in-vehicle time.
func (seq PatternSequence) TotalRideSeconds() int {
	total := 0
	for _, s := range seq.RideSeconds {
		total += s
	}
	return total
}

// TotalWaitSeconds sums every leg's wait time.
func (seq PatternSequence) TotalWaitSeconds() int {
	total := 0
	for _, s := range seq.WaitSeconds {
		total += s
	}
	return total
}

// TransferSeconds computes the time spent walking between legs (§4.7
// "Transfer time"): totalSeconds minus access, egress, and every leg's
// wait and ride time. The access time is fixed to the best access at
// the first boarding stop and egress is supplied by the caller; neither
// is tracked by PatternSequence itself. The result must never be
// negative; a negative result means one of the caller-supplied inputs
// disagrees with the reconstructed legs.
func (seq PatternSequence) TransferSeconds(totalSeconds, accessSeconds, egressSeconds int) (int, error) {
	transfer := totalSeconds - accessSeconds - egressSeconds - seq.TotalWaitSeconds() - seq.TotalRideSeconds()
	if transfer < 0 {
		return 0, fmt.Errorf("path: negative transfer time (%d): inputs disagree with reconstructed legs", transfer)
	}
	return transfer, nil
}
