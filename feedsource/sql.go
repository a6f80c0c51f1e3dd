package feedsource

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"tidbyt.dev/transitnetwork/model"
)

// SQLSource reads a model.Feed out of a normalized SQL schema (see
// Schema) rather than flat files. It is driver-agnostic: pass an
// already-open *sql.DB using either "sqlite3" or "postgres", matching
// this module's two supported drivers.
type SQLSource struct {
	DB     *sql.DB
	FeedID string
}

// Schema is the table layout SQLSource expects, reproduced here for
// operators provisioning a feed database:
//
//	agencies(id, name, timezone)
//	stops(id, code, name, lat, lon, zone_id, parent_station, wheelchair_boarding)
//	routes(id, agency_id, short_name, long_name, route_type, color)
//	trips(id, route_id, service_id, direction_id, block_id, bikes_allowed, wheelchair_accessible)
//	stop_times(trip_id, stop_id, stop_sequence, arrival, departure, pickup_type, drop_off_type, wheelchair)
//	frequencies(trip_id, start_time, end_time, headway_seconds, exact_times)
//	service_weekdays(service_id, start_date, end_date, monday, tuesday, wednesday, thursday, friday, saturday, sunday)
//	service_exceptions(service_id, date, exception_type)
//
// Arrival/departure/start_time/end_time are stored as seconds since
// midnight (INTEGER), matching model's in-memory representation, so no
// "HH:MM:SS" parsing happens on this path.
const Schema = `
CREATE TABLE IF NOT EXISTS agencies (id TEXT PRIMARY KEY, name TEXT, timezone TEXT);
CREATE TABLE IF NOT EXISTS stops (id TEXT PRIMARY KEY, code TEXT, name TEXT, lat DOUBLE PRECISION, lon DOUBLE PRECISION, zone_id TEXT, parent_station TEXT, wheelchair_boarding SMALLINT);
CREATE TABLE IF NOT EXISTS routes (id TEXT PRIMARY KEY, agency_id TEXT, short_name TEXT, long_name TEXT, route_type INTEGER, color TEXT);
CREATE TABLE IF NOT EXISTS trips (id TEXT PRIMARY KEY, route_id TEXT, service_id TEXT, direction_id SMALLINT, block_id TEXT, bikes_allowed SMALLINT, wheelchair_accessible SMALLINT);
CREATE TABLE IF NOT EXISTS stop_times (trip_id TEXT, stop_id TEXT, stop_sequence INTEGER, arrival INTEGER, departure INTEGER, pickup_type SMALLINT, drop_off_type SMALLINT, wheelchair SMALLINT);
CREATE TABLE IF NOT EXISTS frequencies (trip_id TEXT, start_time INTEGER, end_time INTEGER, headway_seconds INTEGER, exact_times SMALLINT);
CREATE TABLE IF NOT EXISTS service_weekdays (service_id TEXT PRIMARY KEY, start_date TEXT, end_date TEXT, monday SMALLINT, tuesday SMALLINT, wednesday SMALLINT, thursday SMALLINT, friday SMALLINT, saturday SMALLINT, sunday SMALLINT);
CREATE TABLE IF NOT EXISTS service_exceptions (service_id TEXT, date TEXT, exception_type SMALLINT);
`

// Load reads every table into a model.Feed.
func (s SQLSource) Load() (model.Feed, error) {
	feed := model.Feed{FeedID: s.FeedID}

	if err := s.loadAgencies(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: agencies: %w", err)
	}
	if err := s.loadStops(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: stops: %w", err)
	}
	if err := s.loadRoutes(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: routes: %w", err)
	}
	if err := s.loadTrips(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: trips: %w", err)
	}
	if err := s.loadStopTimes(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: stop_times: %w", err)
	}
	if err := s.loadFrequencies(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: frequencies: %w", err)
	}
	if err := s.loadServices(&feed); err != nil {
		return feed, fmt.Errorf("feedsource: services: %w", err)
	}

	return feed, nil
}

func (s SQLSource) loadAgencies(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT id, name, timezone FROM agencies`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a model.Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.Timezone); err != nil {
			return err
		}
		feed.Agencies = append(feed.Agencies, a)
	}
	return rows.Err()
}

func (s SQLSource) loadStops(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT id, code, name, lat, lon, zone_id, parent_station, wheelchair_boarding FROM stops`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.Stop
		if err := rows.Scan(&st.ID, &st.Code, &st.Name, &st.Lat, &st.Lon, &st.ZoneID, &st.ParentStation, &st.WheelchairBoarding); err != nil {
			return err
		}
		feed.Stops = append(feed.Stops, st)
	}
	return rows.Err()
}

func (s SQLSource) loadRoutes(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT id, agency_id, short_name, long_name, route_type, color FROM routes`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r model.Route
		var routeType int
		if err := rows.Scan(&r.ID, &r.AgencyID, &r.ShortName, &r.LongName, &routeType, &r.Color); err != nil {
			return err
		}
		r.Type = model.RouteType(routeType)
		feed.Routes = append(feed.Routes, r)
	}
	return rows.Err()
}

func (s SQLSource) loadTrips(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT id, route_id, service_id, direction_id, block_id, bikes_allowed, wheelchair_accessible FROM trips`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var t model.Trip
		if err := rows.Scan(&t.ID, &t.RouteID, &t.ServiceID, &t.DirectionID, &t.BlockID, &t.BikesAllowed, &t.WheelchairAccessible); err != nil {
			return err
		}
		feed.Trips = append(feed.Trips, t)
	}
	return rows.Err()
}

func (s SQLSource) loadStopTimes(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT trip_id, stop_id, stop_sequence, arrival, departure, pickup_type, drop_off_type, wheelchair FROM stop_times`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var st model.StopTime
		if err := rows.Scan(&st.TripID, &st.StopID, &st.StopSequence, &st.Arrival, &st.Departure, &st.PickupType, &st.DropOffType, &st.Wheelchair); err != nil {
			return err
		}
		feed.StopTimes = append(feed.StopTimes, st)
	}
	return rows.Err()
}

func (s SQLSource) loadFrequencies(feed *model.Feed) error {
	rows, err := s.DB.Query(`SELECT trip_id, start_time, end_time, headway_seconds, exact_times FROM frequencies`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var f model.Frequency
		var exact int8
		if err := rows.Scan(&f.TripID, &f.StartTime, &f.EndTime, &f.HeadwaySeconds, &exact); err != nil {
			return err
		}
		f.ExactTimes = exact == 1
		feed.Frequencies = append(feed.Frequencies, f)
	}
	return rows.Err()
}

func (s SQLSource) loadServices(feed *model.Feed) error {
	weekdays := map[string]calendarCSV{}
	rows, err := s.DB.Query(`SELECT service_id, start_date, end_date, monday, tuesday, wednesday, thursday, friday, saturday, sunday FROM service_weekdays`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var c calendarCSV
		if err := rows.Scan(&c.ServiceID, &c.StartDate, &c.EndDate, &c.Monday, &c.Tuesday, &c.Wednesday, &c.Thursday, &c.Friday, &c.Saturday, &c.Sunday); err != nil {
			rows.Close()
			return err
		}
		weekdays[c.ServiceID] = c
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	exceptions := map[string][]calendarDateCSV{}
	excRows, err := s.DB.Query(`SELECT service_id, date, exception_type FROM service_exceptions`)
	if err != nil {
		return err
	}
	defer excRows.Close()
	for excRows.Next() {
		var e calendarDateCSV
		if err := excRows.Scan(&e.ServiceID, &e.Date, &e.ExceptionType); err != nil {
			return err
		}
		exceptions[e.ServiceID] = append(exceptions[e.ServiceID], e)
	}
	if err := excRows.Err(); err != nil {
		return err
	}

	feed.Services = buildServices(weekdays, exceptions)
	return nil
}
