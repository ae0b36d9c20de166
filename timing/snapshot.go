package timing

import (
	"strconv"
	"strings"
)

// CompetitorRow is one line of the standings table.
type CompetitorRow struct {
	Pos          string
	Number       string
	Name         string
	Laps         string
	Time         string
	Best         string
	Diff         string
	Gap          string
	RacerID      string
	Transponder  string
	Category     string
	CategoryDesc string
	BestLap      string
	LastLap      string
}

// SessionRow is the one-line session summary.
type SessionRow struct {
	SessionID   string
	SessionName string
	TrackName   string
	TrackLength string
	CurrentTime string
	SessionTime string
	TimeToGo    string
	LapsToGo    string
	FlagStatus  string
	SortMode    string
}

// Snapshot is the immutable table pair published after each batch.
type Snapshot struct {
	Competitors []CompetitorRow
	Session     SessionRow
}

// BuildSnapshot materializes the table pair from the session's current
// standings order and clears the per-batch change markers.
func BuildSnapshot(s *Session) *Snapshot {
	rows := make([]CompetitorRow, 0, len(s.Sorted))
	for i, c := range s.Sorted {
		pos := c.Position
		if pos == "" {
			pos = strconv.Itoa(i + 1)
		}
		name := strings.TrimSpace(c.FirstName + " " + c.LastName)
		if name == "" {
			name = "Driver " + c.RacerID
		}

		rows = append(rows, CompetitorRow{
			Pos:          pos,
			Number:       c.Number,
			Name:         name,
			Laps:         c.Laps,
			Time:         orDash(c.TotalTime),
			Best:         orDash(c.BestTime),
			Diff:         orDash(c.CalculatedDiff),
			Gap:          orDash(c.CalculatedGap),
			RacerID:      c.RacerID,
			Transponder:  c.Transponder,
			Category:     c.Category,
			CategoryDesc: c.CategoryDescription,
			BestLap:      c.BestLap,
			LastLap:      c.LastLapTime,
		})

		c.DataUpdated = false
	}

	return &Snapshot{
		Competitors: rows,
		Session: SessionRow{
			SessionID:   s.SessionID,
			SessionName: s.SessionName,
			TrackName:   s.TrackName,
			TrackLength: s.TrackLength,
			CurrentTime: s.CurrentTime,
			SessionTime: s.SessionTime,
			TimeToGo:    s.TimeToGo,
			LapsToGo:    s.LapsToGo,
			FlagStatus:  s.FlagStatus,
			SortMode:    s.Mode.String(),
		},
	}
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
