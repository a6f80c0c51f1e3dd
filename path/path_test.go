package path

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/transit"
)

// Scenario F: two patterns P1: A->B->C and P2: C->D. Search reaches D
// in round 2 via boarding P1 at A (08:00), alighting at C (08:10, wait
// 2min at C), boarding P2 at C (08:12), alighting at D (08:20).
//
// Stops: A=0, B=1, C=2, D=3. Patterns: P1=0, P2=1.
func scenarioFState() (SearchState, int) {
	const destination = 3 // D

	// round 0: access reaches A at some non-transfer time (say 1 =
	// "reached", actual walk time not modeled here).
	bestNonTransferTimes := [][]int{
		{1, 0, 0, 0},                      // round 0: only A reached pre-transit
		{1, 0, 8*3600 + 600, 0},           // round 1: board P1 at A, alight C at 08:10
		{1, 0, 8*3600 + 600, 8*3600 + 1200}, // round 2: board P2 at C, alight D at 08:20
	}

	previousPattern := [][]int{
		{-1, -1, -1, -1},
		{-1, -1, 0, -1}, // C's boarding in round 1 was pattern P1 (0)
		{-1, -1, -1, 1}, // D's boarding in round 2 was pattern P2 (1)
	}
	previousStop := [][]int{
		{-1, -1, -1, -1},
		{-1, -1, 0, -1}, // boarded P1 at A (0)
		{-1, -1, -1, 2}, // boarded P2 at C (2)
	}
	previousWaitTime := [][]int{
		{0, 0, 0, 0},
		{0, 0, 300, 0}, // first wait at A, arbitrary value for this test
		{0, 0, 0, 120}, // 2 min wait at C before boarding P2
	}
	previousInVehicleTime := [][]int{
		{0, 0, 0, 0},
		{0, 0, 600, 0}, // A->C ride time 10min
		{0, 0, 0, 480}, // C->D ride time 8min
	}
	transferStop := [][]int{
		{-1, -1, -1, -1},
		{-1, -1, -1, -1}, // no same-round transfer after round 0
		{-1, -1, -1, -1},
	}

	return SearchState{
		BestNonTransferTimes:  bestNonTransferTimes,
		PreviousPattern:       previousPattern,
		PreviousStop:          previousStop,
		PreviousWaitTime:      previousWaitTime,
		PreviousInVehicleTime: previousInVehicleTime,
		TransferStop:          transferStop,
	}, destination
}

func TestReconstruct_TwoLegItinerary(t *testing.T) {
	state, destination := scenarioFState()

	legs, err := Reconstruct(state, destination)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	require.Equal(t, 0, legs[0].PatternIndex)
	require.Equal(t, 0, legs[0].BoardStop) // A
	require.Equal(t, 2, legs[0].AlightStop) // C
	require.Equal(t, 600, legs[0].InVehicleSeconds)

	require.Equal(t, 1, legs[1].PatternIndex)
	require.Equal(t, 2, legs[1].BoardStop) // C
	require.Equal(t, 3, legs[1].AlightStop) // D
	require.Equal(t, 480, legs[1].InVehicleSeconds)
	require.Equal(t, 120, legs[1].WaitSeconds)
}

func TestReconstruct_UnreachableDestination(t *testing.T) {
	state := SearchState{BestNonTransferTimes: [][]int{{0, 0}}}
	_, err := Reconstruct(state, 1)
	require.Error(t, err)
}

func TestPatternSequence_FromLegs(t *testing.T) {
	state, destination := scenarioFState()
	legs, err := Reconstruct(state, destination)
	require.NoError(t, err)

	seq := NewPatternSequence(legs)
	require.Equal(t, []int{0, 1}, seq.Patterns)
	require.Equal(t, []int{0, 2}, seq.BoardStops)
	require.Equal(t, []int{2, 3}, seq.AlightStops)
	require.Equal(t, []int{600, 480}, seq.RideSeconds)
	require.Equal(t, 1080, seq.TotalRideSeconds())
}

func TestRouteSequence_CollapsesPatternsOfSameRoute(t *testing.T) {
	net := transit.New()
	net.Routes = append(net.Routes, transit.Route{ID: "r1"})
	net.Patterns = append(net.Patterns,
		&transit.TripPattern{RouteIndex: 0, Stops: []int{0, 1, 2}},
		&transit.TripPattern{RouteIndex: 0, Stops: []int{0, 1, 2}}, // same route, different pattern
	)

	seqA := PatternSequence{Patterns: []int{0}, BoardStops: []int{0}, AlightStops: []int{2}, RideSeconds: []int{100}, WaitSeconds: []int{0}}
	seqB := PatternSequence{Patterns: []int{1}, BoardStops: []int{0}, AlightStops: []int{2}, RideSeconds: []int{110}, WaitSeconds: []int{0}}

	require.Equal(t, seqA.RouteSequence(net).Key(), seqB.RouteSequence(net).Key())
}

func TestPatternSequence_TransferSeconds(t *testing.T) {
	seq := PatternSequence{RideSeconds: []int{600, 480}, WaitSeconds: []int{300, 120}}
	transfer, err := seq.TransferSeconds(1800, 60, 40)
	require.NoError(t, err)
	require.Equal(t, 200, transfer) // 1800 - 60 - 40 - (300+120) - (600+480)
}

func TestPatternSequence_TransferSecondsRejectsNegative(t *testing.T) {
	seq := PatternSequence{RideSeconds: []int{600}, WaitSeconds: []int{0}}
	_, err := seq.TransferSeconds(100, 0, 0)
	require.Error(t, err)
}
