package transit

// Schedule flag bits, packed into TripSchedule.Flags.
const (
	FlagBicycleAllowed       uint8 = 1 << 0
	FlagWheelchairAccessible uint8 = 1 << 1
)

// TripSchedule is one trip's times within a TripPattern. Arrivals and
// departures are seconds since local midnight on the trip's service
// day; arrivals[i] <= departures[i] <= arrivals[i+1] is enforced at
// ingestion (TripSchedule.Validate), never re-checked downstream.
type TripSchedule struct {
	TripID      string
	Arrivals    []int
	Departures  []int
	ServiceCode int // index into TransitNetwork.Services
	Flags       uint8

	// Frequency-trip fields. Empty for scheduled trips. When present,
	// Arrivals/Departures are normalized so Arrivals[0] == 0: they
	// describe one "template" run of the trip, repeated every
	// HeadwaySeconds[i] between StartTimes[i] and EndTimes[i].
	HeadwaySeconds []int
	StartTimes     []int
	EndTimes       []int

	// NextInBlock links this schedule to the next trip served by the
	// same physical vehicle (interlining), when one exists. Per the
	// open question in DESIGN.md, the link is computed whenever the
	// temporal check in FeedLoader.chainBlocks passes, even though the
	// original implementation this behavior is modeled on sometimes
	// leaves the analogous field unset; downstream consumers may
	// choose to ignore it.
	NextInBlock *TripSchedule
}

// IsFrequency reports whether this is a frequency-based (headway) trip
// rather than one with fixed departure times.
func (t *TripSchedule) IsFrequency() bool {
	return len(t.HeadwaySeconds) > 0
}

// Validate enforces the per-schedule invariants from §3: arrivals and
// departures are length-equal and monotonically non-decreasing, with
// departures[i] >= arrivals[i] and arrivals[i+1] >= departures[i].
// zeroHops counts hops with zero duration (tolerated, often a rounding
// artifact of the source feed).
func (t *TripSchedule) Validate() (zeroHops int, err error) {
	if len(t.Arrivals) != len(t.Departures) {
		return 0, errArrivalDepartureLengthMismatch
	}
	for i := range t.Arrivals {
		if t.Departures[i] < t.Arrivals[i] {
			return 0, errNegativeDwell
		}
		if i > 0 {
			if t.Arrivals[i] < t.Departures[i-1] {
				return 0, errNegativeTravelTime
			}
			if t.Arrivals[i] == t.Departures[i-1] {
				zeroHops++
			}
		}
	}
	return zeroHops, nil
}

// FirstDeparture is the trip's departure time at its first stop, used
// to sort trips within a pattern and to order blocks.
func (t *TripSchedule) FirstDeparture() int {
	if len(t.Departures) == 0 {
		return 0
	}
	return t.Departures[0]
}

// LastArrival is the trip's arrival time at its final stop.
func (t *TripSchedule) LastArrival() int {
	if len(t.Arrivals) == 0 {
		return 0
	}
	return t.Arrivals[len(t.Arrivals)-1]
}

// normalizeFrequencyTimes subtracts Arrivals[0] from every array so
// that frequency trips always describe one run starting at offset 0,
// per §4.1 step 5.
func (t *TripSchedule) normalizeFrequencyTimes() {
	if len(t.Arrivals) == 0 {
		return
	}
	base := t.Arrivals[0]
	if base == 0 {
		return
	}
	for i := range t.Arrivals {
		t.Arrivals[i] -= base
	}
	for i := range t.Departures {
		t.Departures[i] -= base
	}
}
