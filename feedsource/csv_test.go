package feedsource

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestCSVSource_Load(t *testing.T) {
	files := map[string]string{
		"agency.txt":     "agency_id,agency_name,agency_timezone\na1,Agency One,America/Los_Angeles\n",
		"stops.txt":      "stop_id,stop_code,stop_name,stop_lat,stop_lon\ns0,,Stop Zero,37.1,-122.1\ns1,,Stop One,37.2,-122.2\n",
		"routes.txt":     "route_id,agency_id,route_short_name,route_long_name,route_type,route_color\nr0,a1,1,Route Zero,3,\n",
		"trips.txt":      "trip_id,route_id,service_id,direction_id,block_id,bikes_allowed,wheelchair_accessible\nt0,r0,svc,0,,1,2\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\nt0,s0,0,08:00:00,08:00:00\nt0,s1,1,08:10:00,08:10:00\n",
		"calendar.txt":   "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\nsvc,20260101,20261231,1,1,1,1,1,0,0\n",
	}

	feed, err := CSVSource{FeedID: "f1"}.Load(buildZip(t, files))
	require.NoError(t, err)

	require.Len(t, feed.Agencies, 1)
	require.Equal(t, "America/Los_Angeles", feed.Agencies[0].Timezone)
	require.Len(t, feed.Stops, 2)
	require.Len(t, feed.Routes, 1)
	require.Len(t, feed.Trips, 1)
	require.Equal(t, int8(1), feed.Trips[0].BikesAllowed)
	require.Equal(t, int8(2), feed.Trips[0].WheelchairAccessible)
	require.Len(t, feed.StopTimes, 2)
	require.Equal(t, 8*3600, feed.StopTimes[0].Arrival)

	require.Len(t, feed.Services, 1)
	require.True(t, feed.Services[0].ActiveOn("20260105")) // Monday
	require.False(t, feed.Services[0].ActiveOn("20260103")) // Saturday
}

func TestCSVSource_MissingRequiredFileErrors(t *testing.T) {
	files := map[string]string{
		"agency.txt":   "agency_id,agency_name,agency_timezone\na1,Agency One,UTC\n",
		"calendar.txt": "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n",
	}
	_, err := CSVSource{FeedID: "f1"}.Load(buildZip(t, files))
	require.Error(t, err)
}

func TestCSVSource_BlankStopTimeIsUnspecified(t *testing.T) {
	files := map[string]string{
		"agency.txt":     "agency_id,agency_name,agency_timezone\na1,Agency One,UTC\n",
		"stops.txt":      "stop_id,stop_code,stop_name,stop_lat,stop_lon\ns0,,S0,0,0\ns1,,S1,0,0\n",
		"routes.txt":     "route_id,agency_id,route_short_name,route_long_name,route_type,route_color\nr0,a1,1,R0,3,\n",
		"trips.txt":      "trip_id,route_id,service_id,direction_id,block_id\nt0,r0,svc,0,\n",
		"stop_times.txt": "trip_id,stop_id,stop_sequence,arrival_time,departure_time\nt0,s0,0,08:00:00,08:00:00\nt0,s1,1,,\n",
		"calendar.txt":   "service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday\nsvc,20260101,20261231,1,1,1,1,1,1,1\n",
	}

	feed, err := CSVSource{FeedID: "f1"}.Load(buildZip(t, files))
	require.NoError(t, err)
	require.Equal(t, -1, feed.StopTimes[1].Arrival)
	require.Equal(t, -1, feed.StopTimes[1].Departure)
}
