package knockout

import "errors"

// Sentinel errors for matchup data.
var (
	// ErrDataIntegrity marks backend data that breaks a matchup invariant.
	ErrDataIntegrity = errors.New("matchup data integrity")

	ErrTiedMatchup    = errors.New("tied matchup")
	ErrUnknownWinner  = errors.New("winner is neither team of the matchup")
	ErrNotParticipant = errors.New("team did not take part in the matchup")
	ErrSameTeam       = errors.New("head-to-head needs two different teams")
)
