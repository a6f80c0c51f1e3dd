package transit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tidbyt.dev/transitnetwork/model"
)

func TestScenarioCopy_AddStopDoesNotAffectBase(t *testing.T) {
	base := New()
	fl := NewFeedLoader(base, nil)
	_, err := fl.Load(simpleFeed(), model.LoadLevelFull)
	require.NoError(t, err)
	base.RebuildIndexes()

	scenario := base.ScenarioCopy("scenario-1")
	require.Equal(t, "scenario-1", scenario.ScenarioID)
	require.Equal(t, base.StopCount(), scenario.StopCount())

	newIdx := scenario.AddStop("scenario:new", 5, 5, -1)
	require.Equal(t, base.StopCount(), newIdx)
	require.Equal(t, base.StopCount()+1, scenario.StopCount())

	// Base network is untouched.
	require.Equal(t, 2, base.StopCount())
}

func TestScenarioCopy_SharesPatternsByReference(t *testing.T) {
	base := New()
	fl := NewFeedLoader(base, nil)
	_, err := fl.Load(simpleFeed(), model.LoadLevelFull)
	require.NoError(t, err)

	scenario := base.ScenarioCopy("s1")
	require.Same(t, base.Patterns[0], scenario.Patterns[0])
}

func TestScenarioCopy_MutatingScenarioTransfersDoesNotAffectBase(t *testing.T) {
	base := New()
	fl := NewFeedLoader(base, nil)
	_, err := fl.Load(simpleFeed(), model.LoadLevelFull)
	require.NoError(t, err)

	scenario := base.ScenarioCopy("s1")
	scenario.SetTransfersForStop(0, []int32{1, 5000})

	require.Equal(t, emptyTransfers, base.TransfersForStop(0))
	require.Equal(t, []int32{1, 5000}, scenario.TransfersForStop(0))
}
