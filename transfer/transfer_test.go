package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transit"
)

func TestFindTransfers_PatternPruning(t *testing.T) {
	n := transit.New()
	sIdx := n.AddStop("s", 0, 0, 10)
	aIdx := n.AddStop("a", 0, 0, 0)
	bIdx := n.AddStop("b", 0, 0, 1)
	cIdx := n.AddStop("c", 0, 0, 2)

	n.Routes = append(n.Routes, transit.Route{ID: "r1", Mode: transit.ModeBus})
	p1 := &transit.TripPattern{RouteIndex: 0, Stops: []int{aIdx, bIdx, cIdx}, ServicesActive: transit.NewBitset(1)}
	p2 := &transit.TripPattern{RouteIndex: 0, Stops: []int{aIdx, bIdx, cIdx}, ServicesActive: transit.NewBitset(1)}
	n.Patterns = append(n.Patterns, p1, p2)
	n.RebuildIndexes()

	g := street.NewGraph()
	g.AddEdge(10, 0, 300_000) // S -> A
	g.AddEdge(10, 1, 250_000) // S -> B
	g.AddEdge(10, 2, 400_000) // S -> C
	g.LinkStop(10, sIdx)
	g.LinkStop(0, aIdx)
	g.LinkStop(1, bIdx)
	g.LinkStop(2, cIdx)

	f := NewFinder(func() street.Router { return g.NewRouter() })
	f.FindTransfers(n)

	transfers := n.TransfersForStop(sIdx)
	require.Len(t, transfers, 2) // one (target, dist) pair
	require.Equal(t, int32(bIdx), transfers[0])
	require.Equal(t, int32(250_000), transfers[1])
}

func TestFindTransfers_UnlinkedStopYieldsEmptyList(t *testing.T) {
	n := transit.New()
	n.AddStop("s", 0, 0, -1)

	f := NewFinder(func() street.Router { return street.NewGraph().NewRouter() })
	f.FindTransfers(n)

	require.Empty(t, n.TransfersForStop(0))
}

func TestFindTransfers_FreshNetworkTransferListCoversEveryStop(t *testing.T) {
	n := transit.New()
	n.AddStop("a", 0, 0, 0)
	n.AddStop("b", 0, 0, 1)
	n.RebuildIndexes()

	g := street.NewGraph()
	g.AddEdge(0, 1, 100_000)
	g.LinkStop(0, 0)
	g.LinkStop(1, 1)

	f := NewFinder(func() street.Router { return g.NewRouter() })
	f.FindTransfers(n)

	require.Equal(t, n.StopCount(), n.TransferListCount())
}

func TestFindTransfers_ScenarioReverseTransfer(t *testing.T) {
	// Base network has stops B0, B1 with transfers already computed.
	n := transit.New()
	b0 := n.AddStop("b0", 0, 0, 0)
	b1 := n.AddStop("b1", 0, 0, 1)
	n.RebuildIndexes()
	n.SetTransfersForStop(b0, nil)
	n.SetTransfersForStop(b1, nil)

	// Scenario adds N2, linked to a vertex 600m from B0's vertex only.
	n2 := n.AddStop("n2", 0, 0, 2)

	g := street.NewGraph()
	g.AddEdge(2, 0, 600_000) // N2 -> B0
	g.LinkStop(0, b0)
	g.LinkStop(1, b1)
	g.LinkStop(2, n2)

	f := NewFinder(func() street.Router { return g.NewRouter() })
	f.FindTransfers(n)

	b0Transfers := n.TransfersForStop(b0)
	require.Len(t, b0Transfers, 2)
	require.Equal(t, int32(n2), b0Transfers[0])
	require.Equal(t, int32(600_000), b0Transfers[1])

	require.Empty(t, n.TransfersForStop(b1))
}

func TestFindParkRideTransfers_ClosestStopPerPattern(t *testing.T) {
	n := transit.New()
	a := n.AddStop("a", 0, 0, 0)
	b := n.AddStop("b", 0, 0, 1)
	n.Routes = append(n.Routes, transit.Route{ID: "r1", Mode: transit.ModeBus})
	n.Patterns = append(n.Patterns, &transit.TripPattern{RouteIndex: 0, Stops: []int{a, b}, ServicesActive: transit.NewBitset(1)})
	n.RebuildIndexes()

	g := street.NewGraph()
	g.AddEdge(5, 0, 200_000)
	g.AddEdge(5, 1, 100_000)
	g.LinkStop(0, a)
	g.LinkStop(1, b)

	f := NewFinder(func() street.Router { return g.NewRouter() })
	results := f.FindParkRideTransfers(n, []ParkRideLocation{{ID: "lot1", StreetVertex: 5}})

	transfers := results["lot1"]
	require.Len(t, transfers, 1)
	require.Equal(t, b, transfers[0].StopIndex)
	require.Equal(t, int32(100_000), transfers[0].DistanceMM)
	require.NotNil(t, transfers[0].State)
}

func TestFindParkRideTransfers_UnconnectedLotYieldsNoTransfers(t *testing.T) {
	n := transit.New()
	n.AddStop("a", 0, 0, 0)
	n.RebuildIndexes()

	g := street.NewGraph() // no edges at all: vertex 9 is isolated
	f := NewFinder(func() street.Router { return g.NewRouter() })
	results := f.FindParkRideTransfers(n, []ParkRideLocation{{ID: "lot1", StreetVertex: 9}})

	require.Empty(t, results["lot1"])
}
