package timing

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// unrankedPosition is the sort key for a competitor whose position field
// is empty or not numeric; it places them behind everyone ranked.
const unrankedPosition = 9999

// Session is the in-memory model of the current timing session. It is
// owned by the Handler and mutated only on the receive goroutine; other
// goroutines observe it through published snapshots.
type Session struct {
	SessionID   string
	SessionName string
	TrackName   string
	TrackLength string
	CurrentTime string
	SessionTime string
	TimeToGo    string
	LapsToGo    string
	FlagStatus  string

	Mode SortMode

	Classes     map[string]*RaceClass
	Competitors map[string]*Competitor

	// Sorted is the standings order, regenerated after every accepted
	// batch.
	Sorted []*Competitor

	nextSeq int
}

// NewSession returns an empty session in race ordering.
func NewSession() *Session {
	return &Session{
		Classes:     make(map[string]*RaceClass),
		Competitors: make(map[string]*Competitor),
	}
}

// GetCompetitor returns the competitor for the given racer id, creating
// a default entry on first reference.
func (s *Session) GetCompetitor(racerID string) *Competitor {
	c, ok := s.Competitors[racerID]
	if !ok {
		c = &Competitor{RacerID: racerID, seq: s.nextSeq}
		s.nextSeq++
		s.Competitors[racerID] = c
	}
	return c
}

// SetClass inserts or replaces a race class.
func (s *Session) SetClass(classID, description string) {
	s.Classes[classID] = &RaceClass{ClassID: classID, Description: description}
}

// Reset returns the session to its empty state. The sort mode survives a
// reset: the provider announces it separately and does not resend it
// with a new session.
func (s *Session) Reset() {
	s.SessionID = ""
	s.SessionName = ""
	s.TrackName = ""
	s.TrackLength = ""
	s.CurrentTime = ""
	s.SessionTime = ""
	s.TimeToGo = ""
	s.LapsToGo = ""
	s.FlagStatus = ""
	s.Classes = make(map[string]*RaceClass)
	s.Competitors = make(map[string]*Competitor)
	s.Sorted = nil
	s.nextSeq = 0
}

// SortCompetitors regenerates the standings order for the current sort
// mode. Ties keep creation order.
func (s *Session) SortCompetitors() {
	list := make([]*Competitor, 0, len(s.Competitors))
	for _, c := range s.Competitors {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].seq < list[j].seq })

	if s.Mode == SortModeQualifying {
		sort.SliceStable(list, func(i, j int) bool {
			bi, bj := bestTimeKey(list[i]), bestTimeKey(list[j])
			if bi != bj {
				return bi < bj
			}
			return positionNumber(list[i].BestPosition) < positionNumber(list[j].BestPosition)
		})
	} else {
		sort.SliceStable(list, func(i, j int) bool {
			pi, pj := positionNumber(list[i].Position), positionNumber(list[j].Position)
			if pi != pj {
				return pi < pj
			}
			li, lj := lapsNumber(list[i].Laps), lapsNumber(list[j].Laps)
			if li != lj {
				return li > lj
			}
			return totalTimeKey(list[i]) < totalTimeKey(list[j])
		})
	}

	s.Sorted = list
}

// CalculateGapsAndDiffs fills the gap (to the competitor directly ahead)
// and the diff (to the leader) on every sorted competitor. The leader
// carries neither.
func (s *Session) CalculateGapsAndDiffs() {
	if len(s.Sorted) == 0 {
		return
	}

	leader := s.Sorted[0]
	leader.CalculatedGap = ""
	leader.CalculatedDiff = ""

	for i := 1; i < len(s.Sorted); i++ {
		cur := s.Sorted[i]
		prev := s.Sorted[i-1]

		if s.Mode == SortModeQualifying {
			if cur.BestTimeMilliseconds == 0 {
				cur.CalculatedGap = ""
				cur.CalculatedDiff = ""
				continue
			}
			cur.CalculatedGap = bestTimeDifference(cur, prev)
			cur.CalculatedDiff = bestTimeDifference(cur, leader)
			continue
		}

		if cur.TotalTimeMilliseconds == 0 {
			cur.CalculatedGap = ""
			cur.CalculatedDiff = ""
			continue
		}
		cur.CalculatedGap = raceTimeDifference(cur, prev)
		cur.CalculatedDiff = raceTimeDifference(cur, leader)
	}
}

// raceTimeDifference renders the race-mode interval between a competitor
// and one ahead of it. A deficit of one or more full laps is rendered as
// "+N LAP(S)" when the elapsed times are further apart than the slower
// competitor's best lap.
func raceTimeDifference(slower, faster *Competitor) string {
	if faster.TotalTimeMilliseconds == 0 {
		return ""
	}

	lapDiff := lapsNumber(faster.Laps) - lapsNumber(slower.Laps)
	if lapDiff > 0 {
		delta := slower.TotalTimeMilliseconds - faster.TotalTimeMilliseconds
		if slower.BestTimeMilliseconds > 0 && delta > slower.BestTimeMilliseconds {
			if lapDiff == 1 {
				return "+1 LAP"
			}
			return fmt.Sprintf("+%d LAPS", lapDiff)
		}
	}

	delta := slower.TotalTimeMilliseconds - faster.TotalTimeMilliseconds
	if delta < 0 {
		delta = -delta
	}
	return FormatDiff(delta)
}

// bestTimeDifference renders the qualifying-mode interval: the distance
// between best lap times.
func bestTimeDifference(slower, faster *Competitor) string {
	if faster.BestTimeMilliseconds == 0 {
		return ""
	}
	delta := slower.BestTimeMilliseconds - faster.BestTimeMilliseconds
	if delta < 0 {
		delta = -delta
	}
	return FormatDiff(delta)
}

// positionNumber converts a position string into its sort key; anything
// that is not a plain digit string sorts last.
func positionNumber(position string) int {
	if !isDigits(position) {
		return unrankedPosition
	}
	n, err := strconv.Atoi(position)
	if err != nil {
		return unrankedPosition
	}
	return n
}

// lapsNumber converts a lap-count string, treating anything non-numeric
// as zero laps.
func lapsNumber(laps string) int {
	if !isDigits(laps) {
		return 0
	}
	n, _ := strconv.Atoi(laps)
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// totalTimeKey sorts competitors without an elapsed time behind every
// competitor with one.
func totalTimeKey(c *Competitor) int {
	if c.TotalTimeMilliseconds > 0 {
		return c.TotalTimeMilliseconds
	}
	return math.MaxInt
}

func bestTimeKey(c *Competitor) int {
	if c.BestTimeMilliseconds > 0 {
		return c.BestTimeMilliseconds
	}
	return math.MaxInt
}
