package timing

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes raw timing frames and maintains the session model.
// ProcessFrame is driven from the network receive goroutine; the
// published snapshot may be read from any goroutine.
type Handler struct {
	Logger zerolog.Logger

	session *Session

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewHandler returns a handler with an empty session and an empty
// published snapshot.
func NewHandler(logger zerolog.Logger) *Handler {
	h := &Handler{Logger: logger, session: NewSession()}
	h.snapshot = BuildSnapshot(h.session)
	return h
}

// ProcessFrame dispatches every record in a text frame, in arrival
// order. When at least one record was accepted the standings are
// reordered and a new snapshot pair is published; the return value
// reports whether that happened. A record whose handler panics is logged
// and skipped; the rest of the frame is still processed.
func (h *Handler) ProcessFrame(data string) bool {
	accepted := false
	for _, line := range SplitFrame(data) {
		rec, ok := ParseRecord(line)
		if !ok {
			h.Logger.Debug().Msgf("skipped record '%s'", line)
			continue
		}
		handled := func() (handled bool) {
			defer func() {
				if r := recover(); r != nil {
					h.Logger.Error().Msgf("record '%s' failed: %v", line, r)
					handled = false
				}
			}()
			return h.dispatch(rec)
		}()
		if handled {
			accepted = true
		} else {
			h.Logger.Debug().Msgf("skipped record '%s'", line)
		}
	}

	if accepted {
		h.publish()
	}
	return accepted
}

// dispatch routes one record to its handler and reports whether the
// record was accepted. Unknown tags and short records are not.
func (h *Handler) dispatch(rec Record) bool {
	switch rec.Command {
	case "$F":
		return h.handleRaceProgress(rec.Fields)
	case "$A":
		return h.handleCompetitorIdentity(rec.Fields)
	case "$B":
		return h.handleSessionInfo(rec.Fields)
	case "$C":
		return h.handleRaceClass(rec.Fields)
	case "$COMP":
		return h.handleCompetitorExtended(rec.Fields)
	case "$E":
		return h.handleTrackInfo(rec.Fields)
	case "$G":
		return h.handleRacePosition(rec.Fields)
	case "$H":
		return h.handleBestLap(rec.Fields)
	case "$I":
		return h.handleReset()
	case "$J":
		return h.handleLastLap(rec.Fields)
	case "$RMS":
		return h.handleSortMode(rec.Fields)
	default:
		return false
	}
}

// handleRaceProgress ($F) updates the flag and session clocks.
func (h *Handler) handleRaceProgress(fields []string) bool {
	if len(fields) < 6 {
		return false
	}
	h.session.LapsToGo = fields[1]
	h.session.TimeToGo = fields[2]
	h.session.CurrentTime = fields[3]
	h.session.SessionTime = fields[4]
	h.session.FlagStatus = strings.TrimSpace(fields[5])
	return true
}

// handleCompetitorIdentity ($A) upserts a competitor's identity fields.
func (h *Handler) handleCompetitorIdentity(fields []string) bool {
	if len(fields) < 8 {
		return false
	}
	c := h.session.GetCompetitor(fields[1])
	c.Number = fields[2]
	c.Transponder = fields[3]
	c.FirstName = fields[4]
	c.LastName = fields[5]
	c.Nationality = fields[6]
	c.Category = fields[7]
	return true
}

// handleSessionInfo ($B) sets the session identity.
func (h *Handler) handleSessionInfo(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	h.session.SessionID = fields[1]
	h.session.SessionName = fields[2]
	return true
}

// handleRaceClass ($C) inserts or replaces a competition class.
func (h *Handler) handleRaceClass(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	h.session.SetClass(fields[1], fields[2])
	return true
}

// handleCompetitorExtended ($COMP) upserts the extended identity fields.
func (h *Handler) handleCompetitorExtended(fields []string) bool {
	if len(fields) < 8 {
		return false
	}
	c := h.session.GetCompetitor(fields[1])
	c.Number = fields[2]
	c.Category = fields[3]
	c.FirstName = fields[4]
	c.LastName = fields[5]
	c.Nationality = fields[6]
	c.AdditionalData = fields[7]
	return true
}

// handleTrackInfo ($E) recognizes the TRACKNAME and TRACKLENGTH subkeys.
// Other subkeys exist in the wild; they are accepted and ignored.
func (h *Handler) handleTrackInfo(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	switch fields[1] {
	case "TRACKNAME":
		h.session.TrackName = fields[2]
	case "TRACKLENGTH":
		h.session.TrackLength = fields[2]
	default:
		h.Logger.Debug().Msgf("ignoring track subkey %q", fields[1])
	}
	return true
}

// handleRacePosition ($G) updates position, lap count and elapsed time,
// marking the competitor changed when any of the three differ.
func (h *Handler) handleRacePosition(fields []string) bool {
	if len(fields) < 5 {
		return false
	}
	c := h.session.GetCompetitor(fields[2])
	position, laps, totalTime := fields[1], fields[3], fields[4]

	if c.Position != position || c.Laps != laps || c.TotalTime != totalTime {
		c.DataUpdated = true
	}
	c.Position = position
	c.Laps = laps
	c.SetTotalTime(totalTime, h.Logger)
	return true
}

// handleBestLap ($H) updates the best-lap fields, marking the competitor
// changed when any of the three differ.
func (h *Handler) handleBestLap(fields []string) bool {
	if len(fields) < 5 {
		return false
	}
	c := h.session.GetCompetitor(fields[2])
	bestPosition, bestLap, bestTime := fields[1], fields[3], fields[4]

	if c.BestPosition != bestPosition || c.BestLap != bestLap || c.BestTime != bestTime {
		c.DataUpdated = true
	}
	c.BestPosition = bestPosition
	c.BestLap = bestLap
	c.SetBestTime(bestTime, h.Logger)
	return true
}

// handleReset ($I) clears the session; the sort mode survives.
func (h *Handler) handleReset() bool {
	h.Logger.Info().Msg("session reset")
	h.session.Reset()
	return true
}

// handleLastLap ($J) records the most recent lap time and the new
// elapsed time.
func (h *Handler) handleLastLap(fields []string) bool {
	if len(fields) < 4 {
		return false
	}
	c := h.session.GetCompetitor(fields[1])
	c.LastLapTime = fields[2]
	c.SetTotalTime(fields[3], h.Logger)
	c.DataUpdated = true
	return true
}

// handleSortMode ($RMS) switches the ordering strategy.
func (h *Handler) handleSortMode(fields []string) bool {
	if len(fields) < 2 {
		return false
	}
	if fields[1] == "qualifying" {
		h.session.Mode = SortModeQualifying
	} else {
		h.session.Mode = SortModeRace
	}
	return true
}

// publish reorders the standings and swaps in a new snapshot pair.
func (h *Handler) publish() {
	h.session.SortCompetitors()
	h.session.CalculateGapsAndDiffs()
	snap := BuildSnapshot(h.session)

	h.mu.Lock()
	h.snapshot = snap
	h.mu.Unlock()
}

// Snapshot returns the most recently published table pair. The returned
// value is never mutated after publication.
func (h *Handler) Snapshot() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshot
}

// Competitors returns the standings table of the latest snapshot.
func (h *Handler) Competitors() []CompetitorRow {
	return h.Snapshot().Competitors
}

// SessionInfo returns the session summary of the latest snapshot.
func (h *Handler) SessionInfo() SessionRow {
	return h.Snapshot().Session
}
