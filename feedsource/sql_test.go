package feedsource

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = db.Exec(Schema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLSource_Load(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO agencies (id, name, timezone) VALUES ('a1', 'Agency One', 'UTC')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO stops (id, code, name, lat, lon, zone_id, parent_station, wheelchair_boarding) VALUES
		('s0', '', 'Stop Zero', 37.1, -122.1, '', '', 0),
		('s1', '', 'Stop One', 37.2, -122.2, '', '', 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO routes (id, agency_id, short_name, long_name, route_type, color) VALUES ('r0', 'a1', '1', 'Route Zero', 3, '')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO trips (id, route_id, service_id, direction_id, block_id, bikes_allowed, wheelchair_accessible) VALUES ('t0', 'r0', 'svc', 0, '', 1, 2)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO stop_times (trip_id, stop_id, stop_sequence, arrival, departure, pickup_type, drop_off_type, wheelchair) VALUES
		('t0', 's0', 0, 28800, 28800, 0, 0, 0),
		('t0', 's1', 1, 29400, 29400, 0, 0, 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO service_weekdays (service_id, start_date, end_date, monday, tuesday, wednesday, thursday, friday, saturday, sunday)
		VALUES ('svc', '20260101', '20261231', 1, 1, 1, 1, 1, 0, 0)`)
	require.NoError(t, err)

	feed, err := SQLSource{DB: db, FeedID: "f1"}.Load()
	require.NoError(t, err)

	require.Len(t, feed.Agencies, 1)
	require.Len(t, feed.Stops, 2)
	require.Len(t, feed.Routes, 1)
	require.Len(t, feed.Trips, 1)
	require.Equal(t, int8(1), feed.Trips[0].BikesAllowed)
	require.Equal(t, int8(2), feed.Trips[0].WheelchairAccessible)
	require.Len(t, feed.StopTimes, 2)
	require.Equal(t, 28800, feed.StopTimes[0].Arrival)

	require.Len(t, feed.Services, 1)
	require.True(t, feed.Services[0].ActiveOn("20260105")) // Monday
}
