// Package feedsource reads already-GTFS-shaped structured records into
// model.Feed, the wire contract FeedLoader consumes (§4.8). It is
// deliberately not a GTFS feed parser: no zip sniffing, no
// calendar/stop_time interpolation, no schema validation beyond what is
// needed to assemble well-typed records. Two concrete sources are
// provided, both grounded in the CSV/SQL idioms the rest of this
// module's dependency stack already uses: CSVSource (gocsv + bom) for
// flat per-entity files, and SQLSource (database/sql) for a normalized
// SQL schema.
package feedsource

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spkg/bom"

	"tidbyt.dev/transitnetwork/model"
)

func init() {
	// LazyCSVReader tolerates sloppy quoting; bom.NewReader strips a
	// leading unicode BOM, which some feed publishers emit.
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return gocsv.LazyCSVReader(bom.NewReader(in))
	})
}

// CSVSource reads a zip archive of GTFS-shaped flat files (agency.txt,
// stops.txt, routes.txt, trips.txt, stop_times.txt, calendar.txt,
// calendar_dates.txt, frequencies.txt) into a model.Feed.
type CSVSource struct {
	FeedID string
}

type agencyCSV struct {
	ID       string `csv:"agency_id"`
	Name     string `csv:"agency_name"`
	Timezone string `csv:"agency_timezone"`
}

type stopCSV struct {
	ID                 string  `csv:"stop_id"`
	Code               string  `csv:"stop_code"`
	Name               string  `csv:"stop_name"`
	Lat                float64 `csv:"stop_lat"`
	Lon                float64 `csv:"stop_lon"`
	ZoneID             string  `csv:"zone_id"`
	ParentStation      string  `csv:"parent_station"`
	WheelchairBoarding int8    `csv:"wheelchair_boarding"`
}

type routeCSV struct {
	ID        string `csv:"route_id"`
	AgencyID  string `csv:"agency_id"`
	ShortName string `csv:"route_short_name"`
	LongName  string `csv:"route_long_name"`
	Type      int    `csv:"route_type"`
	Color     string `csv:"route_color"`
}

type tripCSV struct {
	ID                   string `csv:"trip_id"`
	RouteID              string `csv:"route_id"`
	ServiceID            string `csv:"service_id"`
	DirectionID          int8   `csv:"direction_id"`
	BlockID              string `csv:"block_id"`
	BikesAllowed         int8   `csv:"bikes_allowed"`
	WheelchairAccessible int8   `csv:"wheelchair_accessible"`
}

type stopTimeCSV struct {
	TripID        string `csv:"trip_id"`
	StopID        string `csv:"stop_id"`
	StopSequence  uint32 `csv:"stop_sequence"`
	Arrival       string `csv:"arrival_time"`
	Departure     string `csv:"departure_time"`
	PickupType    int8   `csv:"pickup_type"`
	DropOffType   int8   `csv:"drop_off_type"`
	WheelchairAcc int8   `csv:"wheelchair_accessible"`
}

type calendarCSV struct {
	ServiceID string `csv:"service_id"`
	StartDate string `csv:"start_date"`
	EndDate   string `csv:"end_date"`
	Monday    int8   `csv:"monday"`
	Tuesday   int8   `csv:"tuesday"`
	Wednesday int8   `csv:"wednesday"`
	Thursday  int8   `csv:"thursday"`
	Friday    int8   `csv:"friday"`
	Saturday  int8   `csv:"saturday"`
	Sunday    int8   `csv:"sunday"`
}

type calendarDateCSV struct {
	ServiceID     string `csv:"service_id"`
	Date          string `csv:"date"`
	ExceptionType int8   `csv:"exception_type"`
}

type frequencyCSV struct {
	TripID      string `csv:"trip_id"`
	StartTime   string `csv:"start_time"`
	EndTime     string `csv:"end_time"`
	HeadwaySecs int    `csv:"headway_secs"`
	ExactTimes  int8   `csv:"exact_times"`
}

// Load reads the zip archive in buf and assembles a model.Feed. At
// least one of calendar.txt or calendar_dates.txt must be present;
// frequencies.txt is optional; every other listed file is required.
func (s CSVSource) Load(buf []byte) (model.Feed, error) {
	feed := model.Feed{FeedID: s.FeedID}

	files, closeAll, err := openZipFiles(buf)
	if err != nil {
		return feed, err
	}
	defer closeAll()

	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		return feed, fmt.Errorf("feedsource: missing calendar.txt and calendar_dates.txt")
	}
	for _, required := range []string{"agency.txt", "stops.txt", "routes.txt", "trips.txt", "stop_times.txt"} {
		if files[required] == nil {
			return feed, fmt.Errorf("feedsource: missing %s", required)
		}
	}

	if err := unmarshalInto(files["agency.txt"], &feed, decodeAgencies); err != nil {
		return feed, fmt.Errorf("agency.txt: %w", err)
	}
	if err := unmarshalInto(files["stops.txt"], &feed, decodeStops); err != nil {
		return feed, fmt.Errorf("stops.txt: %w", err)
	}
	if err := unmarshalInto(files["routes.txt"], &feed, decodeRoutes); err != nil {
		return feed, fmt.Errorf("routes.txt: %w", err)
	}
	if err := unmarshalInto(files["trips.txt"], &feed, decodeTrips); err != nil {
		return feed, fmt.Errorf("trips.txt: %w", err)
	}
	if err := unmarshalInto(files["stop_times.txt"], &feed, decodeStopTimes); err != nil {
		return feed, fmt.Errorf("stop_times.txt: %w", err)
	}

	weekdayServices := map[string]calendarCSV{}
	if files["calendar.txt"] != nil {
		rows := []*calendarCSV{}
		if err := gocsv.Unmarshal(files["calendar.txt"], &rows); err != nil {
			return feed, fmt.Errorf("calendar.txt: %w", err)
		}
		for _, r := range rows {
			weekdayServices[r.ServiceID] = *r
		}
	}

	exceptions := map[string][]calendarDateCSV{}
	if files["calendar_dates.txt"] != nil {
		rows := []*calendarDateCSV{}
		if err := gocsv.Unmarshal(files["calendar_dates.txt"], &rows); err != nil {
			return feed, fmt.Errorf("calendar_dates.txt: %w", err)
		}
		for _, r := range rows {
			exceptions[r.ServiceID] = append(exceptions[r.ServiceID], *r)
		}
	}
	feed.Services = buildServices(weekdayServices, exceptions)

	if files["frequencies.txt"] != nil {
		if err := unmarshalInto(files["frequencies.txt"], &feed, decodeFrequencies); err != nil {
			return feed, fmt.Errorf("frequencies.txt: %w", err)
		}
	}

	return feed, nil
}

func openZipFiles(buf []byte) (map[string]io.ReadCloser, func(), error) {
	wanted := map[string]io.ReadCloser{
		"agency.txt": nil, "stops.txt": nil, "routes.txt": nil, "trips.txt": nil,
		"stop_times.txt": nil, "calendar.txt": nil, "calendar_dates.txt": nil,
		"frequencies.txt": nil,
	}

	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, func() {}, fmt.Errorf("feedsource: unzipping: %w", err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := baseName(f.Name)
		if _, wantedFile := wanted[name]; !wantedFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, func() {}, fmt.Errorf("feedsource: opening %s: %w", f.Name, err)
		}
		wanted[name] = rc
	}

	closeAll := func() {
		for _, rc := range wanted {
			if rc != nil {
				rc.Close()
			}
		}
	}
	return wanted, closeAll, nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

func unmarshalInto(r io.Reader, feed *model.Feed, apply func(*model.Feed, io.Reader) error) error {
	return apply(feed, r)
}

func decodeAgencies(feed *model.Feed, r io.Reader) error {
	rows := []*agencyCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, a := range rows {
		feed.Agencies = append(feed.Agencies, model.Agency{ID: a.ID, Name: a.Name, Timezone: a.Timezone})
	}
	return nil
}

func decodeStops(feed *model.Feed, r io.Reader) error {
	rows := []*stopCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, s := range rows {
		feed.Stops = append(feed.Stops, model.Stop{
			ID: s.ID, Code: s.Code, Name: s.Name, Lat: s.Lat, Lon: s.Lon,
			ZoneID: s.ZoneID, ParentStation: s.ParentStation, WheelchairBoarding: s.WheelchairBoarding,
		})
	}
	return nil
}

func decodeRoutes(feed *model.Feed, r io.Reader) error {
	rows := []*routeCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, route := range rows {
		feed.Routes = append(feed.Routes, model.Route{
			ID: route.ID, AgencyID: route.AgencyID, ShortName: route.ShortName,
			LongName: route.LongName, Type: model.RouteType(route.Type), Color: route.Color,
		})
	}
	return nil
}

func decodeTrips(feed *model.Feed, r io.Reader) error {
	rows := []*tripCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, t := range rows {
		feed.Trips = append(feed.Trips, model.Trip{
			ID: t.ID, RouteID: t.RouteID, ServiceID: t.ServiceID,
			DirectionID: t.DirectionID, BlockID: t.BlockID,
			BikesAllowed: t.BikesAllowed, WheelchairAccessible: t.WheelchairAccessible,
		})
	}
	return nil
}

func decodeStopTimes(feed *model.Feed, r io.Reader) error {
	rows := []*stopTimeCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, st := range rows {
		arrival, err := parseGTFSTime(st.Arrival)
		if err != nil {
			return fmt.Errorf("stop_time for trip '%s': arrival_time: %w", st.TripID, err)
		}
		departure, err := parseGTFSTime(st.Departure)
		if err != nil {
			return fmt.Errorf("stop_time for trip '%s': departure_time: %w", st.TripID, err)
		}
		feed.StopTimes = append(feed.StopTimes, model.StopTime{
			TripID: st.TripID, StopID: st.StopID, StopSequence: st.StopSequence,
			Arrival: arrival, Departure: departure,
			PickupType: st.PickupType, DropOffType: st.DropOffType, Wheelchair: st.WheelchairAcc,
		})
	}
	return nil
}

func decodeFrequencies(feed *model.Feed, r io.Reader) error {
	rows := []*frequencyCSV{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return err
	}
	for _, fr := range rows {
		start, err := parseGTFSTime(fr.StartTime)
		if err != nil {
			return fmt.Errorf("frequency for trip '%s': start_time: %w", fr.TripID, err)
		}
		end, err := parseGTFSTime(fr.EndTime)
		if err != nil {
			return fmt.Errorf("frequency for trip '%s': end_time: %w", fr.TripID, err)
		}
		feed.Frequencies = append(feed.Frequencies, model.Frequency{
			TripID: fr.TripID, StartTime: start, EndTime: end,
			HeadwaySeconds: fr.HeadwaySecs, ExactTimes: fr.ExactTimes == 1,
		})
	}
	return nil
}

// parseGTFSTime parses "HH:MM:SS" (hours may exceed 23 for trips
// crossing midnight within the same service day) into seconds since
// local midnight. A blank string is "unspecified" (-1), resolved by
// FeedLoader's interpolation pass.
func parseGTFSTime(s string) (int, error) {
	if s == "" {
		return -1, nil
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*3600 + m*60 + sec, nil
}

func buildServices(weekday map[string]calendarCSV, exceptions map[string][]calendarDateCSV) []model.Service {
	ids := map[string]bool{}
	for id := range weekday {
		ids[id] = true
	}
	for id := range exceptions {
		ids[id] = true
	}

	services := make([]model.Service, 0, len(ids))
	for id := range ids {
		cal, hasCal := weekday[id]
		excs := exceptions[id]
		services = append(services, model.Service{
			ID:       id,
			ActiveOn: activeOnFunc(cal, hasCal, excs),
		})
	}
	return services
}

// activeOnFunc closes over one service's calendar.txt row (if any) and
// calendar_dates.txt exceptions, returning a predicate FeedLoader
// stores as model.Service.ActiveOn.
func activeOnFunc(cal calendarCSV, hasCal bool, excs []calendarDateCSV) func(date string) bool {
	added := map[string]bool{}
	removed := map[string]bool{}
	for _, e := range excs {
		switch e.ExceptionType {
		case 1:
			added[e.Date] = true
		case 2:
			removed[e.Date] = true
		}
	}

	return func(date string) bool {
		if removed[date] {
			return false
		}
		if added[date] {
			return true
		}
		if !hasCal {
			return false
		}
		if date < cal.StartDate || date > cal.EndDate {
			return false
		}
		t, err := time.ParseInLocation("20060102", date, time.UTC)
		if err != nil {
			return false
		}
		switch t.Weekday() {
		case time.Monday:
			return cal.Monday == 1
		case time.Tuesday:
			return cal.Tuesday == 1
		case time.Wednesday:
			return cal.Wednesday == 1
		case time.Thursday:
			return cal.Thursday == 1
		case time.Friday:
			return cal.Friday == 1
		case time.Saturday:
			return cal.Saturday == 1
		case time.Sunday:
			return cal.Sunday == 1
		default:
			return false
		}
	}
}
