package timing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompetitorUpsert(t *testing.T) {
	s := NewSession()
	a := s.GetCompetitor("7")
	assert.Equal(t, "7", a.RacerID)
	assert.Same(t, a, s.GetCompetitor("7"))
	assert.Len(t, s.Competitors, 1)
}

func TestResetPreservesSortMode(t *testing.T) {
	s := NewSession()
	s.Mode = SortModeQualifying
	s.SessionID = "42"
	s.FlagStatus = "Green"
	s.GetCompetitor("1")
	s.SetClass("A", "Pro")
	s.SortCompetitors()

	s.Reset()

	assert.Equal(t, SortModeQualifying, s.Mode)
	assert.Empty(t, s.Competitors)
	assert.Empty(t, s.Classes)
	assert.Empty(t, s.Sorted)
	assert.Empty(t, s.SessionID)
	assert.Empty(t, s.FlagStatus)
}

func TestSortRaceMode(t *testing.T) {
	s := NewSession()

	third := s.GetCompetitor("c")
	third.Position = "3"
	first := s.GetCompetitor("a")
	first.Position = "1"
	second := s.GetCompetitor("b")
	second.Position = "2"
	unranked := s.GetCompetitor("d")

	s.SortCompetitors()

	require.Len(t, s.Sorted, 4)
	assert.Equal(t, []string{"a", "b", "c", "d"}, racerIDs(s.Sorted))
	_ = unranked
}

func TestSortRaceModeTieBreakers(t *testing.T) {
	s := NewSession()

	// equal positions: more laps first, then lower elapsed time,
	// no-time competitors last
	slow := s.GetCompetitor("slow")
	slow.Position = "1"
	slow.Laps = "10"
	slow.SetTotalTime("00:21:00.000", testLogger)

	fast := s.GetCompetitor("fast")
	fast.Position = "1"
	fast.Laps = "10"
	fast.SetTotalTime("00:20:00.000", testLogger)

	moreLaps := s.GetCompetitor("laps")
	moreLaps.Position = "1"
	moreLaps.Laps = "11"
	moreLaps.SetTotalTime("00:22:00.000", testLogger)

	noTime := s.GetCompetitor("notime")
	noTime.Position = "1"
	noTime.Laps = "10"

	s.SortCompetitors()
	assert.Equal(t, []string{"laps", "fast", "slow", "notime"}, racerIDs(s.Sorted))
}

func TestSortRaceModeStable(t *testing.T) {
	s := NewSession()
	for _, id := range []string{"x", "y", "z"} {
		s.GetCompetitor(id)
	}
	s.SortCompetitors()
	// all keys equal: creation order is kept
	assert.Equal(t, []string{"x", "y", "z"}, racerIDs(s.Sorted))
}

func TestSortQualifyingMode(t *testing.T) {
	s := NewSession()
	s.Mode = SortModeQualifying

	slower := s.GetCompetitor("1")
	slower.SetBestTime("00:01:29.500", testLogger)
	faster := s.GetCompetitor("2")
	faster.SetBestTime("00:01:28.100", testLogger)
	_ = s.GetCompetitor("3")

	s.SortCompetitors()
	assert.Equal(t, []string{"2", "1", "3"}, racerIDs(s.Sorted))
}

func TestGapsAndDiffsRaceMode(t *testing.T) {
	s := NewSession()

	leader := s.GetCompetitor("1")
	leader.Position = "1"
	leader.Laps = "10"
	leader.SetTotalTime("00:20:00.000", testLogger)

	second := s.GetCompetitor("2")
	second.Position = "2"
	second.Laps = "10"
	second.SetTotalTime("00:20:02.500", testLogger)

	third := s.GetCompetitor("3")
	third.Position = "3"
	third.Laps = "10"
	third.SetTotalTime("00:20:04.000", testLogger)

	s.SortCompetitors()
	s.CalculateGapsAndDiffs()

	assert.Empty(t, leader.CalculatedGap)
	assert.Empty(t, leader.CalculatedDiff)
	assert.Equal(t, "+02.500", second.CalculatedGap)
	assert.Equal(t, "+02.500", second.CalculatedDiff)
	assert.Equal(t, "+01.500", third.CalculatedGap)
	assert.Equal(t, "+04.000", third.CalculatedDiff)
}

func TestGapsDiffMonotonic(t *testing.T) {
	// equal laps, positive times: diff never decreases down the order
	s := NewSession()
	times := []string{"00:20:00.000", "00:20:01.200", "00:20:05.900", "00:21:00.000"}
	for i, tt := range times {
		c := s.GetCompetitor(string(rune('a' + i)))
		c.Position = ""
		c.Laps = "12"
		c.SetTotalTime(tt, testLogger)
	}

	s.SortCompetitors()
	s.CalculateGapsAndDiffs()

	prev := 0
	for i, c := range s.Sorted {
		if i == 0 {
			continue
		}
		d := ParseTime(c.CalculatedDiff[1:], testLogger)
		assert.GreaterOrEqual(t, d, prev, "diff %q at index %d", c.CalculatedDiff, i)
		prev = d
	}
}

func TestLapDownRendering(t *testing.T) {
	s := NewSession()

	leader := s.GetCompetitor("1")
	leader.Position = "1"
	leader.Laps = "10"
	leader.SetTotalTime("00:20:00.000", testLogger)

	lapped := s.GetCompetitor("2")
	lapped.Position = "2"
	lapped.Laps = "9"
	lapped.SetTotalTime("00:22:00.000", testLogger)
	lapped.SetBestTime("00:01:35.000", testLogger)

	s.SortCompetitors()
	s.CalculateGapsAndDiffs()
	assert.Equal(t, "+1 LAP", lapped.CalculatedDiff)
	assert.Equal(t, "+1 LAP", lapped.CalculatedGap)

	// two laps down pluralizes
	lapped.Laps = "8"
	s.SortCompetitors()
	s.CalculateGapsAndDiffs()
	assert.Equal(t, "+2 LAPS", lapped.CalculatedDiff)
}

func TestLapDownFallsBackToTimeDiff(t *testing.T) {
	// a lap of difference without a best lap to compare against renders
	// as a plain time difference
	s := NewSession()

	leader := s.GetCompetitor("1")
	leader.Position = "1"
	leader.Laps = "10"
	leader.SetTotalTime("00:20:00.000", testLogger)

	lapped := s.GetCompetitor("2")
	lapped.Position = "2"
	lapped.Laps = "9"
	lapped.SetTotalTime("00:22:00.000", testLogger)

	s.SortCompetitors()
	s.CalculateGapsAndDiffs()
	assert.Equal(t, "+02:00.000", lapped.CalculatedDiff)
}

func TestGapsQualifyingMode(t *testing.T) {
	s := NewSession()
	s.Mode = SortModeQualifying

	a := s.GetCompetitor("1")
	a.SetBestTime("00:01:29.500", testLogger)
	a.SetTotalTime("00:20:00.000", testLogger)
	b := s.GetCompetitor("2")
	b.SetBestTime("00:01:28.100", testLogger)
	b.SetTotalTime("00:20:02.500", testLogger)

	s.SortCompetitors()
	s.CalculateGapsAndDiffs()

	require.Equal(t, []string{"2", "1"}, racerIDs(s.Sorted))
	assert.Empty(t, b.CalculatedDiff)
	assert.Equal(t, "+01.400", a.CalculatedDiff)
	assert.Equal(t, "+01.400", a.CalculatedGap)
}

func racerIDs(list []*Competitor) []string {
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.RacerID
	}
	return ids
}
