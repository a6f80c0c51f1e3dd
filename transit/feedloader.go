package transit

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pkg/errors"

	"tidbyt.dev/transitnetwork/model"
)

// FeedLoader translates feed records into the internal entities defined
// in this package, enforcing the invariants in §3 and grouping trips
// into patterns. One FeedLoader always targets a single TransitNetwork;
// call Load once per feed, then RebuildIndexes once after the last one.
type FeedLoader struct {
	Network *TransitNetwork
	Logger  *slog.Logger
}

// NewFeedLoader returns a FeedLoader targeting net. A nil logger falls
// back to slog.Default().
func NewFeedLoader(net *TransitNetwork, logger *slog.Logger) *FeedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedLoader{Network: net, Logger: logger}
}

// Load ingests one feed. It fails fast with *DuplicateFeedError if this
// feed id was already loaded, and with *TaxiServiceUnsupportedError if
// the feed contains a taxi-type route. Otherwise it appends entities to
// the network and returns a BuildReport of non-fatal issues.
//
// RebuildIndexes must be called once after the last Load call; this
// method does not call it itself; see §4.1.
func (fl *FeedLoader) Load(feed model.Feed, level model.LoadLevel) (*BuildReport, error) {
	n := fl.Network
	if n.loadedFeedIDs == nil {
		n.loadedFeedIDs = map[string]bool{}
	}
	if n.loadedFeedIDs[feed.FeedID] {
		return nil, &DuplicateFeedError{FeedID: feed.FeedID}
	}

	report := &BuildReport{FeedID: feed.FeedID}

	stopIndexByFeedLocalID, err := fl.loadStops(feed, level, report)
	if err != nil {
		return nil, errors.Wrapf(err, "loading stops for feed %s", feed.FeedID)
	}

	serviceIndexByFeedLocalID := fl.loadServices(feed)

	routeIndexByFeedLocalID, err := fl.loadRoutes(feed, level)
	if err != nil {
		return nil, err
	}

	scheduleByTripID, err := fl.loadTripsAndSchedules(
		feed, level, report,
		stopIndexByFeedLocalID, serviceIndexByFeedLocalID, routeIndexByFeedLocalID,
	)
	if err != nil {
		return nil, err
	}

	fl.chainBlocks(feed, scheduleByTripID)

	for _, p := range n.Patterns {
		p.sortSchedulesByFirstDeparture()
	}

	fl.updateTimezone(feed, report)
	fl.updateCenter(feed)

	n.loadedFeedIDs[feed.FeedID] = true

	fl.Logger.Info("loaded feed",
		"feed_id", feed.FeedID,
		"stops", len(feed.Stops),
		"routes", len(feed.Routes),
		"trips", len(feed.Trips),
		"rejected_trips", len(report.RejectedTrips),
	)

	return report, nil
}

// loadStops assigns dense indices to every stop in insertion order,
// scoping its id to "feedID:stopID" (§4.1 step 1).
func (fl *FeedLoader) loadStops(feed model.Feed, level model.LoadLevel, report *BuildReport) (map[string]int, error) {
	n := fl.Network
	byLocalID := make(map[string]int, len(feed.Stops))

	for _, s := range feed.Stops {
		idx := n.StopCount()
		scopedID := feed.FeedID + ":" + s.ID

		name := s.Name
		if level == model.LoadLevelBasic {
			name = ""
		}

		n.stopIDForIndex = append(n.stopIDForIndex, scopedID)
		n.stopNameForIndex = append(n.stopNameForIndex, name)
		n.streetVertexForStop = append(n.streetVertexForStop, -1)
		n.stopZone = append(n.stopZone, s.ZoneID)
		n.stopParentStation = append(n.stopParentStation, s.ParentStation)
		n.stopWheelchair = append(n.stopWheelchair, s.WheelchairBoarding)
		n.stopLat = append(n.stopLat, s.Lat)
		n.stopLon = append(n.stopLon, s.Lon)

		byLocalID[s.ID] = idx
	}

	return byLocalID, nil
}

// loadServices assigns dense indices to every service, §4.1 step 2.
func (fl *FeedLoader) loadServices(feed model.Feed) map[string]int {
	n := fl.Network
	byLocalID := make(map[string]int, len(feed.Services))
	for _, svc := range feed.Services {
		idx := len(n.Services)
		n.Services = append(n.Services, Service{ID: svc.ID, ActiveOn: svc.ActiveOn})
		byLocalID[svc.ID] = idx
	}
	return byLocalID
}

// loadRoutes pre-creates a Route entry for every route_type-valid route
// in the feed so pattern grouping (§4.1 step 4) can reference a route
// index immediately. Fails fast on any taxi-type route.
func (fl *FeedLoader) loadRoutes(feed model.Feed, level model.LoadLevel) (map[string]int, error) {
	n := fl.Network
	byLocalID := make(map[string]int, len(feed.Routes))

	agencyTZByID := map[string]string{}
	for _, a := range feed.Agencies {
		agencyTZByID[a.ID] = a.Timezone
	}

	for _, r := range feed.Routes {
		mode, ok := ModeForRouteType(r.Type)
		if !ok {
			return nil, &TaxiServiceUnsupportedError{RouteID: r.ID}
		}

		idx := len(n.Routes)
		route := Route{
			ID:       feed.FeedID + ":" + r.ID,
			AgencyID: r.AgencyID,
			Mode:     mode,
		}
		if level == model.LoadLevelFull {
			route.ShortName = r.ShortName
			route.LongName = r.LongName
			route.Color = r.Color
		}
		n.Routes = append(n.Routes, route)
		byLocalID[r.ID] = idx
	}

	return byLocalID, nil
}

// loadTripsAndSchedules groups trips into patterns by
// (route, stop sequence, pickup/dropoff sequence), building a
// TripSchedule for each surviving trip (§4.1 steps 3-6).
func (fl *FeedLoader) loadTripsAndSchedules(
	feed model.Feed,
	level model.LoadLevel,
	report *BuildReport,
	stopIndexByLocalID map[string]int,
	serviceIndexByLocalID map[string]int,
	routeIndexByLocalID map[string]int,
) (map[string]*TripSchedule, error) {
	n := fl.Network

	stopTimesByTrip := groupStopTimesByTrip(feed.StopTimes)
	frequenciesByTrip := groupFrequenciesByTrip(feed.Frequencies)

	patternIndexByKey := map[patternKey]int{}
	scheduleByTripID := make(map[string]*TripSchedule, len(feed.Trips))

	for _, t := range feed.Trips {
		stopTimes := stopTimesByTrip[t.ID]
		if len(stopTimes) == 0 {
			report.addRejection(feed.FeedID, t.ID, errNoStops)
			continue
		}

		sort.Slice(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})

		arrivals, departures, err := interpolateTimes(stopTimes)
		if err != nil {
			report.addRejection(feed.FeedID, t.ID, err)
			continue
		}

		stops := make([]int, len(stopTimes))
		pickups := make([]int8, len(stopTimes))
		dropoffs := make([]int8, len(stopTimes))
		wheelchair := NewBitset(len(stopTimes))
		for i, st := range stopTimes {
			stopIdx, ok := stopIndexByLocalID[st.StopID]
			if !ok {
				report.addRejection(feed.FeedID, t.ID, fmt.Errorf("unknown stop %q", st.StopID))
				stops = nil
				break
			}
			stops[i] = stopIdx
			pickups[i] = st.PickupType
			dropoffs[i] = st.DropOffType
			if st.Wheelchair != 0 {
				wheelchair.Set(i)
			}
		}
		if stops == nil {
			continue
		}

		var flags uint8
		if t.BikesAllowed == 1 {
			flags |= FlagBicycleAllowed
		}
		if t.WheelchairAccessible == 1 {
			flags |= FlagWheelchairAccessible
		}

		schedule := &TripSchedule{
			TripID:     t.ID,
			Arrivals:   arrivals,
			Departures: departures,
			Flags:      flags,
		}

		zeroHops, err := schedule.Validate()
		if err != nil {
			report.addRejection(feed.FeedID, t.ID, err)
			continue
		}
		report.ZeroDurationHops += zeroHops

		serviceCode, ok := serviceIndexByLocalID[t.ServiceID]
		if !ok {
			report.addRejection(feed.FeedID, t.ID, fmt.Errorf("unknown service %q", t.ServiceID))
			continue
		}
		schedule.ServiceCode = serviceCode

		if entries := frequenciesByTrip[t.ID]; len(entries) > 0 {
			if err := applyFrequencies(schedule, entries); err != nil {
				report.addRejection(feed.FeedID, t.ID, err)
				continue
			}
		}

		routeIdx, ok := routeIndexByLocalID[t.RouteID]
		if !ok {
			report.addRejection(feed.FeedID, t.ID, fmt.Errorf("unknown route %q", t.RouteID))
			continue
		}

		key := patternKey{
			routeID: t.RouteID,
			stops:   joinInts(stops),
			pickups: joinPickups(pickups, dropoffs),
		}

		patternIdx, exists := patternIndexByKey[key]
		var pattern *TripPattern
		if exists {
			pattern = n.Patterns[patternIdx]
		} else {
			pattern = &TripPattern{
				OriginalID:           len(n.Patterns),
				RouteIndex:           routeIdx,
				DirectionID:          t.DirectionID,
				Stops:                stops,
				Pickups:              pickups,
				DropOffs:             dropoffs,
				WheelchairAccessible: wheelchair,
				ServicesActive:       NewBitset(len(n.Services)),
			}
			patternIndexByKey[key] = len(n.Patterns)
			n.Patterns = append(n.Patterns, pattern)
		}

		pattern.AddSchedule(schedule)
		scheduleByTripID[t.ID] = schedule
	}

	return scheduleByTripID, nil
}

func groupStopTimesByTrip(stopTimes []model.StopTime) map[string][]model.StopTime {
	byTrip := map[string][]model.StopTime{}
	for _, st := range stopTimes {
		byTrip[st.TripID] = append(byTrip[st.TripID], st)
	}
	return byTrip
}

func groupFrequenciesByTrip(freqs []model.Frequency) map[string][]model.Frequency {
	byTrip := map[string][]model.Frequency{}
	for _, f := range freqs {
		byTrip[f.TripID] = append(byTrip[f.TripID], f)
	}
	return byTrip
}

// interpolateTimes fills in any stop times missing an explicit
// arrival/departure (marked -1) by linear interpolation between the
// nearest explicit times before and after, per §4.1 step 3. The first
// and last stop time must be explicit; otherwise interpolation is
// impossible and the trip is rejected.
func interpolateTimes(stopTimes []model.StopTime) (arrivals, departures []int, err error) {
	n := len(stopTimes)
	arrivals = make([]int, n)
	departures = make([]int, n)

	if stopTimes[0].Arrival < 0 || stopTimes[n-1].Arrival < 0 {
		return nil, nil, errUninterpolable
	}

	for i, st := range stopTimes {
		arrivals[i] = st.Arrival
		departures[i] = st.Departure
		if departures[i] < 0 {
			departures[i] = arrivals[i]
		}
	}

	// Fill any interior gap by distributing elapsed time evenly across
	// the missing stops, proportional to their position in the sorted
	// stop list (a reasonable default absent shape-based distances).
	i := 0
	for i < n {
		if arrivals[i] >= 0 {
			i++
			continue
		}
		start := i - 1
		end := i
		for end < n && arrivals[end] < 0 {
			end++
		}
		if end >= n {
			return nil, nil, errUninterpolable
		}
		span := end - start
		startTime := departures[start]
		endTime := arrivals[end]
		for k := start + 1; k < end; k++ {
			frac := float64(k-start) / float64(span)
			t := startTime + int(float64(endTime-startTime)*frac)
			arrivals[k] = t
			departures[k] = t
		}
		i = end
	}

	return arrivals, departures, nil
}

// applyFrequencies attaches frequency entries to a schedule and
// normalizes its times so Arrivals[0] == 0 (§4.1 step 5). A trip whose
// every frequency entry has end time before start time is rejected.
func applyFrequencies(schedule *TripSchedule, entries []model.Frequency) error {
	anyValid := false
	for _, e := range entries {
		if e.EndTime < e.StartTime {
			continue
		}
		anyValid = true
		schedule.StartTimes = append(schedule.StartTimes, e.StartTime)
		schedule.EndTimes = append(schedule.EndTimes, e.EndTime)
		schedule.HeadwaySeconds = append(schedule.HeadwaySeconds, e.HeadwaySeconds)
	}
	if !anyValid {
		return errAllFrequenciesInvalid
	}
	schedule.normalizeFrequencyTimes()
	return nil
}

func joinInts(xs []int) string {
	b := make([]byte, 0, len(xs)*5)
	for _, x := range xs {
		b = append(b, byte(x), byte(x>>8), byte(x>>16), byte(x>>24), ',')
	}
	return string(b)
}

func joinPickups(pickups, dropoffs []int8) string {
	b := make([]byte, 0, len(pickups)*2)
	for i := range pickups {
		b = append(b, byte(pickups[i]), byte(dropoffs[i]))
	}
	return string(b)
}

// chainBlocks links trips sharing a non-empty block id, within this
// feed, into a forward linked list of schedules ordered by ascending
// first departure (§4.1 step 7). A link is only set when the earlier
// trip's last arrival is no later than the next trip's first departure;
// see DESIGN.md's open question about this check's origin.
func (fl *FeedLoader) chainBlocks(feed model.Feed, scheduleByTripID map[string]*TripSchedule) {
	tripsByBlock := map[string][]model.Trip{}
	for _, t := range feed.Trips {
		if t.BlockID == "" {
			continue
		}
		tripsByBlock[t.BlockID] = append(tripsByBlock[t.BlockID], t)
	}

	for _, trips := range tripsByBlock {
		schedules := make([]*TripSchedule, 0, len(trips))
		for _, t := range trips {
			if s := scheduleByTripID[t.ID]; s != nil {
				schedules = append(schedules, s)
			}
		}
		if len(schedules) < 2 {
			continue
		}
		stableSortSchedules(schedules)

		for i := 0; i < len(schedules)-1; i++ {
			a, b := schedules[i], schedules[i+1]
			if a.LastArrival() <= b.FirstDeparture() {
				a.NextInBlock = b
			}
		}
	}
}

// updateTimezone takes the feed's time zone from the first agency with
// a parseable time zone id, warning (but not failing) if agencies
// disagree or an agency's id does not parse, and defaulting to UTC when
// no agency has a valid zone, per §4.1 step 10.
func (fl *FeedLoader) updateTimezone(feed model.Feed, report *BuildReport) {
	n := fl.Network
	for _, a := range feed.Agencies {
		if a.Timezone == "" {
			continue
		}
		if _, err := time.LoadLocation(a.Timezone); err != nil {
			msg := fmt.Sprintf("agency %q reports unparseable timezone %q", a.ID, a.Timezone)
			report.TimezoneWarnings = append(report.TimezoneWarnings, msg)
			fl.Logger.Warn("agency timezone unparseable", "agency", a.ID, "timezone", a.Timezone)
			continue
		}
		if n.Timezone == "" {
			n.Timezone = a.Timezone
		} else if n.Timezone != a.Timezone {
			msg := fmt.Sprintf("agency %q reports timezone %q, feed already uses %q", a.ID, a.Timezone, n.Timezone)
			report.TimezoneWarnings = append(report.TimezoneWarnings, msg)
			fl.Logger.Warn("agency timezone disagreement", "agency", a.ID, "timezone", a.Timezone, "feed_timezone", n.Timezone)
		}
	}
	if n.Timezone == "" {
		n.Timezone = "UTC"
	}
}

// updateCenter recomputes the network's center as the mean of every
// stop's coordinate, §4.1 step 9.
func (fl *FeedLoader) updateCenter(feed model.Feed) {
	n := fl.Network
	if n.StopCount() == 0 {
		return
	}
	var sumLat, sumLon float64
	for i := 0; i < n.StopCount(); i++ {
		sumLat += n.stopLat[i]
		sumLon += n.stopLon[i]
	}
	n.CenterLat = sumLat / float64(n.StopCount())
	n.CenterLon = sumLon / float64(n.StopCount())
}
