// Package model holds the structured feed records consumed by
// transit.FeedLoader: the shapes a (deliberately out of scope) feed
// parser is expected to produce. Nothing in this package touches CSV,
// zip files, or protobuf — it is the wire contract between an upstream
// parser and this module.
package model

// RouteType is the raw route_type code from a schedule feed.
// transit.ModeForRouteType maps it onto the closed internal Mode enum.
type RouteType int

const (
	RouteTypeTram       RouteType = 0
	RouteTypeSubway     RouteType = 1
	RouteTypeRail       RouteType = 2
	RouteTypeBus        RouteType = 3
	RouteTypeFerry      RouteType = 4
	RouteTypeCable      RouteType = 5
	RouteTypeAerial     RouteType = 6
	RouteTypeFunicular  RouteType = 7
	RouteTypeTrolleybus RouteType = 11
	RouteTypeMonorail   RouteType = 12
	// RouteTypeTaxi sits in the extended "demand responsive" band and is
	// rejected outright at ingestion (TaxiServiceUnsupportedError).
	RouteTypeTaxi RouteType = 1500
)

// LoadLevel controls how much of a feed's detail FeedLoader retains.
// BASIC omits stop names, route details and fares; FULL keeps everything.
type LoadLevel int

const (
	LoadLevelBasic LoadLevel = iota
	LoadLevelFull
)

type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}

type Stop struct {
	ID                 string
	Code               string
	Name               string
	Lat                float64
	Lon                float64
	ZoneID             string
	ParentStation      string
	WheelchairBoarding int8
}

type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      RouteType
	Color     string
}

// Service is a calendar of dates on which its trips run. ActiveOn
// answers whether the service operates on the given date (YYYYMMDD).
// It is a closure rather than a weekday+exception pair so that the
// feed parser's calendar.txt/calendar_dates.txt reconciliation stays
// entirely on its side of the interface.
type Service struct {
	ID       string
	ActiveOn func(date string) bool
}

// Trip's BikesAllowed/WheelchairAccessible follow the GTFS convention:
// 0 = no info, 1 = yes, 2 = no.
type Trip struct {
	ID                   string
	RouteID              string
	ServiceID            string
	DirectionID          int8
	BlockID              string
	BikesAllowed         int8
	WheelchairAccessible int8
}

// StopTime is one scheduled stop visit within a trip. Arrival/Departure
// are seconds since midnight on the trip's service day; -1 means "not
// specified in the feed" and is a candidate for FeedLoader interpolation.
type StopTime struct {
	TripID       string
	StopID       string
	StopSequence uint32
	Arrival      int
	Departure    int
	PickupType   int8
	DropOffType  int8
	Wheelchair   int8
}

// Frequency describes a frequency-based (headway) trip: it repeats
// every HeadwaySeconds between StartTime and EndTime, all in seconds
// since midnight, rather than running at one fixed set of times.
type Frequency struct {
	TripID         string
	StartTime      int
	EndTime        int
	HeadwaySeconds int
	ExactTimes     bool
}

// Feed bundles every record FeedLoader.Load needs from a single schedule
// feed. FeedID scopes every entity id within it ("feedID:stopID" etc.)
// so stops/routes/trips from distinct feeds never collide.
type Feed struct {
	FeedID      string
	Agencies    []Agency
	Stops       []Stop
	Routes      []Route
	Services    []Service
	Trips       []Trip
	StopTimes   []StopTime
	Frequencies []Frequency
}
