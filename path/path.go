// Package path reconstructs itineraries from a finished RAPTOR-style
// search (§4.7). The search itself is out of scope for this module;
// path only consumes the per-round state arrays it produces.
package path

import "errors"

// SearchState is the input contract from an external round-based
// search (§4.7 "Input contract"). Each field is indexed [round][stop];
// round 0 is the access leg, rounds increase with each additional
// transit boarding. A value of -1 in PreviousPattern, PreviousStop or
// TransferStop means "none" for that (round, stop).
type SearchState struct {
	BestNonTransferTimes  [][]int
	PreviousPattern       [][]int
	PreviousStop          [][]int
	PreviousWaitTime      [][]int
	PreviousInVehicleTime [][]int
	TransferStop          [][]int
}

// Leg is one transit boarding-to-alighting segment of a reconstructed
// itinerary.
type Leg struct {
	PatternIndex     int
	BoardStop        int
	AlightStop       int
	InVehicleSeconds int
	WaitSeconds      int
}

var errUnreachable = errors.New("path: destination not reached in any round")

// Reconstruct walks the search state backward from destination,
// emitting one Leg per transit boarding, and returns them in
// origin-to-destination order.
//
// Algorithm (§4.7): starting at the last round the destination was
// improved in, walk back until the round where the stop's best-non-
// transfer time first differs from the previous round's value for that
// stop — that round is where the boarding happened. Step to the
// boarding's previous state, resolve a same-round transfer if one is
// recorded, and repeat until round 0.
func Reconstruct(state SearchState, destination int) ([]Leg, error) {
	round := lastImprovedRound(state, destination)
	if round < 0 {
		return nil, errUnreachable
	}

	var legs []Leg
	stop := destination

	for round > 0 {
		boardRound := boardingRound(state, round, stop)
		if boardRound <= 0 {
			return nil, errUnreachable
		}

		patternIndex := state.PreviousPattern[boardRound][stop]
		boardStop := state.PreviousStop[boardRound][stop]
		legs = append(legs, Leg{
			PatternIndex:     patternIndex,
			BoardStop:        boardStop,
			AlightStop:       stop,
			InVehicleSeconds: state.PreviousInVehicleTime[boardRound][stop],
			WaitSeconds:      state.PreviousWaitTime[boardRound][stop],
		})

		prevRound := boardRound - 1
		prevStop := boardStop
		if prevRound >= 0 && prevRound < len(state.TransferStop) && boardStop < len(state.TransferStop[prevRound]) {
			if ts := state.TransferStop[prevRound][boardStop]; ts >= 0 {
				prevStop = ts
			}
		}

		round = prevRound
		stop = prevStop
	}

	reverse(legs)
	return legs, nil
}

// lastImprovedRound finds the highest round in which destination's
// best-non-transfer time was set (i.e. the stop was reached).
func lastImprovedRound(state SearchState, destination int) int {
	for r := len(state.BestNonTransferTimes) - 1; r >= 0; r-- {
		row := state.BestNonTransferTimes[r]
		if destination < len(row) && row[destination] > 0 {
			return r
		}
	}
	return -1
}

// boardingRound walks backward from round, at stop, until the round
// where stop's best-non-transfer time differs from the prior round's —
// that round is the one in which the boarding occurred.
func boardingRound(state SearchState, round, stop int) int {
	for r := round; r > 0; r-- {
		cur := valueAt(state.BestNonTransferTimes, r, stop)
		prev := valueAt(state.BestNonTransferTimes, r-1, stop)
		if cur != prev {
			return r
		}
	}
	return 0
}

func valueAt(rows [][]int, round, stop int) int {
	if round < 0 || round >= len(rows) {
		return 0
	}
	row := rows[round]
	if stop < 0 || stop >= len(row) {
		return 0
	}
	return row[stop]
}

func reverse(legs []Leg) {
	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
}
