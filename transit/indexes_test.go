package transit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/model"
)

func TestRebuildIndexes_Idempotent(t *testing.T) {
	n := New()
	fl := NewFeedLoader(n, nil)
	_, err := fl.Load(simpleFeed(), model.LoadLevelFull)
	require.NoError(t, err)

	n.SetStreetVertexForStop(0, 10)
	n.SetStreetVertexForStop(1, 20)

	n.RebuildIndexes()
	first := n.patternsForStop

	n.RebuildIndexes()
	second := n.patternsForStop

	require.Equal(t, first, second)

	stopIdx, ok := n.StopForStreetVertex(10)
	require.True(t, ok)
	require.Equal(t, 0, stopIdx)
}

func TestRebuildIndexes_PatternsForStopNoDuplicates(t *testing.T) {
	n := New()
	fl := NewFeedLoader(n, nil)
	feed := simpleFeed()
	feed.Trips = append(feed.Trips, model.Trip{ID: "T2", RouteID: "R1", ServiceID: "WEEKDAY"})
	feed.StopTimes = append(feed.StopTimes,
		model.StopTime{TripID: "T2", StopID: "S0", StopSequence: 0, Arrival: 9 * 3600, Departure: 9 * 3600},
		model.StopTime{TripID: "T2", StopID: "S1", StopSequence: 1, Arrival: 9*3600 + 600, Departure: 9*3600 + 600},
	)
	_, err := fl.Load(feed, model.LoadLevelFull)
	require.NoError(t, err)

	n.RebuildIndexes()
	require.Equal(t, []int{0}, n.PatternsForStop(0))
}

func TestStopIndexForID(t *testing.T) {
	n := New()
	fl := NewFeedLoader(n, nil)
	_, err := fl.Load(simpleFeed(), model.LoadLevelFull)
	require.NoError(t, err)
	n.RebuildIndexes()

	idx, ok := n.StopIndexForID("f1:S1")
	require.True(t, ok)
	require.Equal(t, 1, idx)
}
