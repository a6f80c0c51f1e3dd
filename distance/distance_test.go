package distance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transit"
)

func smallNetwork() *transit.TransitNetwork {
	n := transit.New()
	n.AddStop("a", 0, 0, 0)
	n.AddStop("b", 0, 0.001, 1)
	n.AddStop("c", 0, 0.002, -1) // unlinked
	return n
}

func TestBuild_LinksReachableStopsAndSkipsUnlinked(t *testing.T) {
	n := smallNetwork()

	g := street.NewGraph()
	g.AddEdge(0, 1, 300_000)
	g.LinkStop(0, 0)
	g.LinkStop(1, 1)

	err := Build(context.Background(), n, func() street.Router { return g.NewRouter() }, nil, Config{})
	require.NoError(t, err)

	require.NotNil(t, n.StopToVertexDistances(0))
	require.NotNil(t, n.StopToVertexDistances(1))
	require.Nil(t, n.StopToVertexDistances(2))
}

func TestBuild_PopulatesReportWithUnlinkedStops(t *testing.T) {
	n := smallNetwork()

	g := street.NewGraph()
	g.AddEdge(0, 1, 300_000)
	g.LinkStop(0, 0)
	g.LinkStop(1, 1)

	report := &transit.BuildReport{}
	err := Build(context.Background(), n, func() street.Router { return g.NewRouter() }, nil, Config{Report: report})
	require.NoError(t, err)

	require.Len(t, report.UnlinkedStops, 1)
	require.Equal(t, "c", report.UnlinkedStops[0].StopID)
}

func TestBuild_RespectsZoneFilter(t *testing.T) {
	n := smallNetwork()

	g := street.NewGraph()
	g.AddEdge(0, 1, 300_000)
	g.LinkStop(0, 0)
	g.LinkStop(1, 1)

	zone := &Zone{MinLat: -1, MaxLat: 1, MinLon: -1, MaxLon: 0.0005}
	err := Build(context.Background(), n, func() street.Router { return g.NewRouter() }, zone, Config{})
	require.NoError(t, err)

	require.NotNil(t, n.StopToVertexDistances(0))
	require.Nil(t, n.StopToVertexDistances(1)) // outside zone, never touched
}

func TestBuild_RadiusBoundsDistances(t *testing.T) {
	n := transit.New()
	n.AddStop("a", 0, 0, 0)
	n.AddStop("b", 0, 0, 1)

	g := street.NewGraph()
	g.AddEdge(0, 1, 5_000_000) // 5km, beyond default 2km radius
	g.LinkStop(0, 0)
	g.LinkStop(1, 1)

	err := Build(context.Background(), n, func() street.Router { return g.NewRouter() }, nil, Config{RadiusMeters: 2000})
	require.NoError(t, err)

	table := n.StopToVertexDistances(0)
	require.NotNil(t, table)
	_, reached := table[1]
	require.False(t, reached)
}
