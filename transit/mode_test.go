package transit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/model"
)

func TestModeForRouteType_ClassicCodesRoundTrip(t *testing.T) {
	cases := []struct {
		rt   model.RouteType
		mode Mode
	}{
		{model.RouteTypeTram, ModeTram},
		{model.RouteTypeSubway, ModeSubway},
		{model.RouteTypeRail, ModeRail},
		{model.RouteTypeBus, ModeBus},
		{model.RouteTypeFerry, ModeFerry},
		{model.RouteTypeCable, ModeCableCar},
		{model.RouteTypeAerial, ModeGondola},
		{model.RouteTypeFunicular, ModeFunicular},
		{model.RouteTypeTrolleybus, ModeBus},
		{model.RouteTypeMonorail, ModeSubway},
	}
	for _, c := range cases {
		mode, ok := ModeForRouteType(c.rt)
		require.True(t, ok, "route type %d should map", c.rt)
		require.Equal(t, c.mode, mode)
	}
}

func TestModeForRouteType_TaxiRejected(t *testing.T) {
	_, ok := ModeForRouteType(model.RouteTypeTaxi)
	require.False(t, ok)
}

func TestModeForRouteType_ExtendedBands(t *testing.T) {
	mode, ok := ModeForRouteType(model.RouteType(401)) // urban rail band
	require.True(t, ok)
	require.Equal(t, ModeRail, mode)

	mode, ok = ModeForRouteType(model.RouteType(1301)) // gondola band
	require.True(t, ok)
	require.Equal(t, ModeGondola, mode)
}

func TestModeSet(t *testing.T) {
	s := NewModeSet(ModeBus, ModeRail)
	require.True(t, s.Contains(ModeBus))
	require.True(t, s.Contains(ModeRail))
	require.False(t, s.Contains(ModeFerry))

	all := AllModes()
	require.True(t, all.Contains(ModeAir))
}
