// Command buildnetwork is a build-time operator tool: it fetches a
// schedule feed archive, loads it into a TransitNetwork, links stops to
// a street graph, and runs the distance-table and transfer-finding
// passes that make the network query-ready. It never answers a routing
// query itself — that is a separate, out-of-scope surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tidbyt.dev/transitnetwork/distance"
	"tidbyt.dev/transitnetwork/downloader"
	"tidbyt.dev/transitnetwork/feedsource"
	"tidbyt.dev/transitnetwork/model"
	"tidbyt.dev/transitnetwork/street"
	"tidbyt.dev/transitnetwork/transfer"
	"tidbyt.dev/transitnetwork/transit"
)

var rootCmd = &cobra.Command{
	Use:          "buildnetwork",
	Short:        "Build a query-ready transit network from a schedule feed",
	SilenceUsage: true,
}

var (
	feedURL     string
	feedID      string
	headers     []string
	level       string
	cacheFile   string
	headwayOnly bool
)

func init() {
	rootCmd.Flags().StringVarP(&feedURL, "feed-url", "", "", "schedule feed archive URL")
	rootCmd.Flags().StringVarP(&feedID, "feed-id", "", "default", "feed id to scope loaded entities under")
	rootCmd.Flags().StringSliceVarP(&headers, "header", "", []string{}, "HTTP header (key:value), repeatable")
	rootCmd.Flags().StringVarP(&level, "level", "", "full", "load level: full or basic")
	rootCmd.Flags().StringVarP(&cacheFile, "cache-file", "", "", "filesystem cache for downloaded archives")
	rootCmd.Flags().BoolVarP(&headwayOnly, "stats-only", "", false, "load the feed and print stats, skipping street linking, distance tables and transfers")
	rootCmd.RunE = run
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func parseHeaders(raw []string) (map[string]string, error) {
	parsed := map[string]string{}
	for _, h := range raw {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("'%s' is not on form <key>:<value>", h)
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed, nil
}

func run(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	if feedURL == "" {
		return fmt.Errorf("--feed-url is required")
	}

	loadLevel := model.LoadLevelFull
	if level == "basic" {
		loadLevel = model.LoadLevelBasic
	}

	parsedHeaders, err := parseHeaders(headers)
	if err != nil {
		return fmt.Errorf("invalid header: %w", err)
	}

	var dl downloader.Downloader
	if cacheFile != "" {
		fs, err := downloader.NewFilesystem(cacheFile)
		if err != nil {
			return fmt.Errorf("opening cache file: %w", err)
		}
		dl = fs
	} else {
		dl = downloader.NewMemory()
	}

	ctx := context.Background()
	buf, err := dl.Get(ctx, feedURL, parsedHeaders, downloader.GetOptions{Timeout: 60 * time.Second, Cache: cacheFile != ""})
	if err != nil {
		return fmt.Errorf("downloading feed: %w", err)
	}

	feed, err := feedsource.CSVSource{FeedID: feedID}.Load(buf)
	if err != nil {
		return fmt.Errorf("decoding feed: %w", err)
	}

	net := transit.New()
	loader := transit.NewFeedLoader(net, logger)
	report, err := loader.Load(feed, loadLevel)
	if err != nil {
		return fmt.Errorf("loading feed: %w", err)
	}
	net.RebuildIndexes()

	if headwayOnly {
		logger.Info("feed stats",
			"feed_id", feedID,
			"stops", net.StopCount(),
			"routes", net.RouteCount(),
			"patterns", net.PatternCount(),
			"timezone", net.Timezone,
		)
		return nil
	}

	g := linkStopsToDemoGraph(net)

	if err := distance.Build(ctx, net, func() street.Router { return g.NewRouter() }, nil, distance.Config{Logger: logger, Report: report}); err != nil {
		return fmt.Errorf("building distance tables: %w", err)
	}

	finder := transfer.NewFinder(func() street.Router { return g.NewRouter() })
	finder.Logger = logger
	finder.FindTransfers(net)

	if report.HasIssues() {
		logger.Warn("network built with issues",
			"rejected_trips", len(report.RejectedTrips),
			"zero_duration_hops", report.ZeroDurationHops,
			"unlinked_stops", len(report.UnlinkedStops),
			"timezone_warnings", len(report.TimezoneWarnings),
		)
	}

	logger.Info("network built",
		"feed_id", feedID,
		"stops", net.StopCount(),
		"routes", net.RouteCount(),
		"patterns", net.PatternCount(),
		"timezone", net.Timezone,
	)

	return nil
}

// linkStopsToDemoGraph builds a street graph with one vertex per stop
// and an edge between every pair of stops, weighted by great-circle-ish
// planar distance. This module does not implement a real street-routing
// engine (§6 "Router" is an external collaborator); it exists so this
// command is runnable standalone against any feed without a production
// street graph wired in.
func linkStopsToDemoGraph(net *transit.TransitNetwork) *street.Graph {
	g := street.NewGraph()
	for i := 0; i < net.StopCount(); i++ {
		net.SetStreetVertexForStop(i, i)
		g.LinkStop(i, i)
	}
	for i := 0; i < net.StopCount(); i++ {
		lat1, lon1 := net.StopLatLon(i)
		for j := i + 1; j < net.StopCount(); j++ {
			lat2, lon2 := net.StopLatLon(j)
			g.AddEdge(i, j, planarDistanceMM(lat1, lon1, lat2, lon2))
		}
	}
	net.RebuildIndexes()
	return g
}

// planarDistanceMM is a flat-earth approximation, adequate for a demo
// graph over a small area; a production deployment supplies a real
// street.Router instead of this command's built-in graph.
func planarDistanceMM(lat1, lon1, lat2, lon2 float64) int32 {
	const metersPerDegreeLat = 111_320.0
	dLat := (lat1 - lat2) * metersPerDegreeLat
	dLon := (lon1 - lon2) * metersPerDegreeLat
	dist := dLat*dLat + dLon*dLon
	meters := math.Sqrt(dist)
	return int32(meters * 1000)
}
