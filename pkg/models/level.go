package models

import "time"

// Level lives at levels/{tier}/entries/{id}. IDs are sequential per tier,
// minted from the levelCounters/{tier} counter document.
//
// A level is "open" while Solver is nil. Solver is set exactly once; solved
// levels are kept as historical records and never deleted.
type Level struct {
	ID           string           `firestore:"id" json:"id"`
	Tier         string           `firestore:"tier" json:"tier"`
	Solution     []string         `firestore:"solution" json:"-"`
	Tries        int64            `firestore:"tries" json:"tries"`
	Participants map[string]int64 `firestore:"participants" json:"participants"`
	Solver       *string          `firestore:"solver" json:"solver,omitempty"`
	Delay        *time.Time       `firestore:"delay" json:"delay,omitempty"`
}

// Open reports whether the level can still be solved.
func (l *Level) Open() bool {
	return l.Solver == nil
}

// CoolingDown reports whether the level's cooldown window is still running.
func (l *Level) CoolingDown(now time.Time) bool {
	return l.Delay != nil && now.Before(*l.Delay)
}
