package transit

// Pickup/drop-off policy codes, as carried in a schedule feed's
// stop_times.txt: 0 regular, 1 none, 2 phone agency, 3 coordinate with
// driver.
const (
	PickupRegular int8 = 0
	PickupNone    int8 = 1
)

// TripPattern (aka journey pattern) is the equivalence class of trips on
// a route that share an ordered stop sequence and per-stop pickup/
// drop-off policies. OriginalID is assigned once at build time and
// preserved across scenario copies, so it remains stable even as a
// scenario appends new patterns after it.
type TripPattern struct {
	OriginalID int
	RouteIndex int
	DirectionID int8

	Stops    []int   // stop indices, in visit order
	Pickups  []int8  // per-stop, same length as Stops
	DropOffs []int8  // per-stop, same length as Stops

	// WheelchairAccessible[i] is set when stop i on this pattern can be
	// boarded by a wheelchair user.
	WheelchairAccessible Bitset

	Schedules []*TripSchedule

	HasSchedules   bool
	HasFrequencies bool

	// ServicesActive is the union, over every schedule in this
	// pattern, of that schedule's ServiceCode. Maintained incrementally
	// as schedules are appended (AddSchedule), per the invariant that
	// it always equals that union.
	ServicesActive Bitset
}

// patternKey groups trips into the same TripPattern: same route, same
// ordered stop sequence, same per-stop pickup/drop-off policy.
type patternKey struct {
	routeID string
	stops   string // joined stop indices
	pickups string // joined pickup/dropoff codes
}

// AddSchedule appends a schedule to the pattern, updates the
// HasSchedules/HasFrequencies summary flags, and folds the schedule's
// service code into ServicesActive.
func (p *TripPattern) AddSchedule(s *TripSchedule) {
	p.Schedules = append(p.Schedules, s)
	if s.IsFrequency() {
		p.HasFrequencies = true
	} else {
		p.HasSchedules = true
	}
	p.ServicesActive.Set(s.ServiceCode)
}

// StopCount returns the number of stops visited by this pattern.
func (p *TripPattern) StopCount() int { return len(p.Stops) }

// sortSchedulesByFirstDeparture orders schedules ascending by first
// departure time, per §4.1 step 8. Sort is stable so trips with
// identical first departures keep their ingestion order.
func (p *TripPattern) sortSchedulesByFirstDeparture() {
	stableSortSchedules(p.Schedules)
}

func stableSortSchedules(s []*TripSchedule) {
	// Insertion sort: pattern trip counts are small (tens, rarely
	// hundreds) and this keeps the sort trivially stable without
	// pulling in sort.Slice's reflection-based comparator for a hot
	// ingestion path.
	for i := 1; i < len(s); i++ {
		j := i
		for j > 0 && s[j-1].FirstDeparture() > s[j].FirstDeparture() {
			s[j-1], s[j] = s[j], s[j-1]
			j--
		}
	}
}
