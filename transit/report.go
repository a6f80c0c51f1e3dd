package transit

// BuildReport accumulates the non-fatal warnings and per-trip rejections
// produced while loading a feed. A successful Load always returns a
// report, even if it is empty; the network is considered valid
// regardless of its contents (§7).
type BuildReport struct {
	FeedID string

	RejectedTrips   []TripRejection
	ZeroDurationHops int
	UnlinkedStops    []UnlinkedStopWarning

	// TimezoneWarnings records agencies whose timezone disagreed with
	// the one already chosen for this feed, or whose timezone id
	// could not be parsed.
	TimezoneWarnings []string
}

func (r *BuildReport) addRejection(feedID, tripID string, reason error) {
	r.RejectedTrips = append(r.RejectedTrips, TripRejection{FeedID: feedID, TripID: tripID, Reason: reason})
}

// HasIssues reports whether anything at all was recorded; useful for a
// build tool deciding whether to print a warnings section.
func (r *BuildReport) HasIssues() bool {
	return len(r.RejectedTrips) > 0 || r.ZeroDurationHops > 0 ||
		len(r.UnlinkedStops) > 0 || len(r.TimezoneWarnings) > 0
}
