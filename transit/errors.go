package transit

import "fmt"

// DuplicateFeedError is fatal: the network already contains this feed
// id. A feed's entities are never re-applied once loaded.
type DuplicateFeedError struct {
	FeedID string
}

func (e *DuplicateFeedError) Error() string {
	return fmt.Sprintf("feed %q already loaded", e.FeedID)
}

// TaxiServiceUnsupportedError is fatal: the feed contains a taxi-type
// route, which this package has no Mode for and will not silently
// misclassify.
type TaxiServiceUnsupportedError struct {
	RouteID string
}

func (e *TaxiServiceUnsupportedError) Error() string {
	return fmt.Sprintf("route %q is a taxi-type route, which is unsupported", e.RouteID)
}

// UnlinkedStopWarning is informational: a stop has no street-vertex
// linkage, so it will have no transfers and no stop-to-vertex distance
// table. It is not an ingestion failure.
type UnlinkedStopWarning struct {
	StopID string
}

func (e *UnlinkedStopWarning) Error() string {
	return fmt.Sprintf("stop %q is not linked to the street network", e.StopID)
}

// Per-trip data errors. These cause the offending trip to be skipped,
// not the feed load to fail; FeedLoader records one TripRejection per
// rejected trip in the returned BuildReport, with one of these (or an
// unknown stop, service or route error) as its reason.
var (
	errArrivalDepartureLengthMismatch = fmt.Errorf("arrivals and departures length mismatch")
	errNegativeDwell                  = fmt.Errorf("departure precedes arrival at a stop")
	errNegativeTravelTime              = fmt.Errorf("arrival precedes previous stop's departure")
	errNoStops                        = fmt.Errorf("trip has no stops")
	errUninterpolable                 = fmt.Errorf("missing stop times could not be interpolated")
	errAllFrequenciesInvalid          = fmt.Errorf("every frequency entry has end time before start time")
)

// TripRejection records why a single trip was skipped during ingestion.
type TripRejection struct {
	FeedID string
	TripID string
	Reason error
}

func (r TripRejection) Error() string {
	return fmt.Sprintf("trip %s:%s rejected: %v", r.FeedID, r.TripID, r.Reason)
}
