package timing

import "github.com/rs/zerolog"

// SortMode selects the ordering strategy for the standings.
type SortMode int

const (
	// SortModeRace orders by position, then laps completed, then elapsed
	// time.
	SortModeRace SortMode = iota

	// SortModeQualifying orders by best lap time.
	SortModeQualifying
)

func (m SortMode) String() string {
	if m == SortModeQualifying {
		return "QUALIFYING"
	}
	return "RACE"
}

// Competitor is one entrant in the session. Protocol fields are kept as
// the raw strings received on the wire; the millisecond counterparts are
// rederived whenever a time field is assigned.
//
// DisplayPosition, CategoryDescription and LastSplitTime are carried as
// snapshot columns but no record in the observed protocol writes them.
type Competitor struct {
	RacerID        string
	Number         string
	Transponder    string
	FirstName      string
	LastName       string
	Nationality    string
	AdditionalData string

	Category            string
	CategoryDescription string

	Position              string
	Laps                  string
	TotalTime             string
	TotalTimeMilliseconds int

	BestPosition         string
	BestLap              string
	BestTime             string
	BestTimeMilliseconds int

	LastLapTime   string
	LastSplitTime string

	// DataUpdated marks that a timing record changed this competitor in
	// the current batch; the snapshot builder clears it.
	DataUpdated bool

	CalculatedGap   string
	CalculatedDiff  string
	DisplayPosition string

	// seq is the creation rank, used to keep sorting stable across the
	// competitor map.
	seq int
}

// SetTotalTime assigns the elapsed-time string and rederives its
// millisecond value. The no-time sentinel keeps the milliseconds at 0.
func (c *Competitor) SetTotalTime(s string, logger zerolog.Logger) {
	c.TotalTime = s
	if s == "" || s == NoTimeSentinel {
		c.TotalTimeMilliseconds = 0
		return
	}
	c.TotalTimeMilliseconds = ParseTime(s, logger)
}

// SetBestTime assigns the best-lap string and rederives its millisecond
// value, with the same sentinel handling as SetTotalTime.
func (c *Competitor) SetBestTime(s string, logger zerolog.Logger) {
	c.BestTime = s
	if s == "" || s == NoTimeSentinel {
		c.BestTimeMilliseconds = 0
		return
	}
	c.BestTimeMilliseconds = ParseTime(s, logger)
}

// RaceClass is one competition class announced by the timing provider.
type RaceClass struct {
	ClassID     string
	Description string
}
