package transit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTripSchedule_Validate_Monotonic(t *testing.T) {
	s := &TripSchedule{Arrivals: []int{0, 100, 200}, Departures: []int{0, 110, 200}}
	zeroHops, err := s.Validate()
	require.NoError(t, err)
	require.Equal(t, 0, zeroHops)
}

func TestTripSchedule_Validate_NegativeDwellRejected(t *testing.T) {
	s := &TripSchedule{Arrivals: []int{0, 100}, Departures: []int{0, 90}}
	_, err := s.Validate()
	require.Error(t, err)
}

func TestTripSchedule_Validate_NegativeTravelTimeRejected(t *testing.T) {
	s := &TripSchedule{Arrivals: []int{0, 50}, Departures: []int{60, 60}}
	_, err := s.Validate()
	require.Error(t, err)
}

func TestTripSchedule_Validate_ZeroHopCounted(t *testing.T) {
	s := &TripSchedule{Arrivals: []int{0, 100}, Departures: []int{100, 100}}
	zeroHops, err := s.Validate()
	require.NoError(t, err)
	require.Equal(t, 1, zeroHops)
}

func TestTripPattern_AddSchedule_UpdatesServicesActiveAndFlags(t *testing.T) {
	p := &TripPattern{ServicesActive: NewBitset(4)}
	p.AddSchedule(&TripSchedule{Arrivals: []int{0, 10}, Departures: []int{0, 10}, ServiceCode: 2})
	require.True(t, p.HasSchedules)
	require.False(t, p.HasFrequencies)
	require.True(t, p.ServicesActive.Get(2))

	p.AddSchedule(&TripSchedule{
		Arrivals: []int{0, 10}, Departures: []int{0, 10}, ServiceCode: 3,
		HeadwaySeconds: []int{600}, StartTimes: []int{0}, EndTimes: []int{3600},
	})
	require.True(t, p.HasFrequencies)
	require.True(t, p.ServicesActive.Get(3))
}

func TestTripPattern_StopCount(t *testing.T) {
	p := &TripPattern{Stops: []int{1, 2, 3}}
	require.Equal(t, 3, p.StopCount())
}
