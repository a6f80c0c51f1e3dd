// Package testutil provides fixture helpers for this module's tests:
// building a minimal feed zip and loading it straight into a
// TransitNetwork with rebuilt indexes, mirroring the teacher's BuildStatic/
// BuildZip helper shape but against FeedLoader/CSVSource instead of the
// storage-backed parser they replace.
package testutil

import (
	"archive/zip"
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/feedsource"
	"tidbyt.dev/transitnetwork/model"
	"tidbyt.dev/transitnetwork/transit"
)

// BuildZip packs files (each a slice of CSV lines) into an in-memory
// zip archive.
func BuildZip(t testing.TB, files map[string][]string) []byte {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// BuildFeed fills in missing required files with minimal dummy data,
// packs files into a zip, and decodes it with feedsource.CSVSource.
func BuildFeed(t testing.TB, feedID string, files map[string][]string) model.Feed {
	if files["agency.txt"] == nil {
		files["agency.txt"] = []string{"agency_id,agency_name,agency_timezone", "a1,FooAgency,UTC"}
	}
	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		files["calendar.txt"] = []string{"service_id,start_date,end_date,monday,tuesday,wednesday,thursday,friday,saturday,sunday"}
	}
	if files["routes.txt"] == nil {
		files["routes.txt"] = []string{"route_id,agency_id,route_short_name,route_long_name,route_type,route_color"}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"trip_id,route_id,service_id,direction_id,block_id"}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id,stop_code,stop_name,stop_lat,stop_lon"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{"trip_id,stop_id,stop_sequence,arrival_time,departure_time"}
	}

	buf := BuildZip(t, files)
	feed, err := feedsource.CSVSource{FeedID: feedID}.Load(buf)
	require.NoError(t, err)
	return feed
}

// LoadNetwork builds a feed from files and loads it into a fresh
// TransitNetwork, failing the test on any fatal build error.
func LoadNetwork(t testing.TB, level model.LoadLevel, files map[string][]string) (*transit.TransitNetwork, *transit.BuildReport) {
	net := transit.New()
	feed := BuildFeed(t, "test", files)

	loader := transit.NewFeedLoader(net, slog.Default())
	report, err := loader.Load(feed, level)
	require.NoError(t, err)

	net.RebuildIndexes()
	return net, report
}
