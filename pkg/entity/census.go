package entity

import "time"

// Census is a periodic snapshot of discovered peers. Read-only from the
// audit core's perspective; populated by the cartographer collaborator.
type Census struct {
	ID          int64
	SurveyedAt  time.Time
}

// CensusNode is one peer observed within a Census.
type CensusNode struct {
	ID         int64
	CensusID   int64 // fk -> Census.ID
	NodeID     int64 // fk -> Node.ID
	Radius     [32]byte
	ClientInfo string
}
