package transit

// Stop is a boarding location. Stops are numbered by dense integer
// index in insertion order; that index, not ID, is the primary key used
// throughout the package.
type Stop struct {
	ID                 string // feed-id-prefixed, e.g. "sfmta:1234"
	Name               string
	ZoneID             string
	ParentStation      string
	StreetVertex       int // index into the street graph, -1 if unlinked
	WheelchairBoarding int8
	Lat                float64
	Lon                float64
}

// Linked reports whether this stop has a street-vertex linkage.
func (s Stop) Linked() bool { return s.StreetVertex >= 0 }

// Route is a named service line. Its Mode is derived from route_type
// once, at ingestion, via ModeForRouteType.
type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Color     string
	Mode      Mode
}

// Service is a calendar of dates on which its trips run, represented as
// a dense bitset over service index: "service i is active" is a bit,
// not a date lookup, once ActiveServicesForDate has run.
type Service struct {
	ID string
	// ActiveOn mirrors model.Service.ActiveOn; retained so
	// ActiveServicesForDate can be recomputed for an arbitrary date
	// without re-ingesting the feed.
	ActiveOn func(date string) bool
}
