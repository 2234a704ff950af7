// Package eligibility decides whether an identity may create, rename or join
// a team, reschedule a match, submit its result, edit a player profile or
// report streams. Every decision is a pure
// function of snapshots loaded by the caller; nothing here reads the store
// or the clock.
package eligibility

import (
	"errors"
	"fmt"
)

// RegionAll is the circuit region whose teams do not count toward the
// per-season team cap.
const RegionAll = "A"

// MaxRegionalTeams is the number of teams a player may hold per season
// outside All-region circuits.
const MaxRegionalTeams = 2

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalid         = errors.New("invalid")
	ErrConflict        = errors.New("conflict")
)

type Kind int

const (
	KindAuthentication Kind = iota + 1
	KindAuthorization
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Denial is an expected refusal. Reason is shown to callers verbatim.
type Denial struct {
	Kind   Kind
	Reason string
}

func (d *Denial) Error() string {
	return d.Reason
}

func (d *Denial) Unwrap() error {
	switch d.Kind {
	case KindAuthentication:
		return ErrUnauthenticated
	case KindAuthorization:
		return ErrForbidden
	case KindConflict:
		return ErrConflict
	default:
		return ErrInvalid
	}
}

func deny(kind Kind, reason string) *Denial {
	return &Denial{Kind: kind, Reason: reason}
}

// AsDenial returns the Denial wrapped in err, if any.
func AsDenial(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Decide converts a rule outcome into the allowed/reason pair. Errors that
// are not denials are reported as disallowed with their message.
func Decide(err error) (bool, string) {
	if err == nil {
		return true, ""
	}
	if d, ok := AsDenial(err); ok {
		return false, d.Reason
	}
	return false, err.Error()
}

// Identity is the caller as resolved once at the edge. PlayerID is nil when
// the account has no linked player.
type Identity struct {
	AccountID     int64
	Authenticated bool
	IsService     bool
	PlayerID      *int64
}

func Anonymous() Identity {
	return Identity{}
}

func (id Identity) player() (int64, bool) {
	if !id.Authenticated || id.PlayerID == nil {
		return 0, false
	}
	return *id.PlayerID, true
}

func (id Identity) isPlayer(playerID *int64) bool {
	p, ok := id.player()
	return ok && playerID != nil && *playerID == p
}

type Season struct {
	ID               int64
	IsActive         bool
	RegistrationOpen bool
	RostersOpen      bool
	MaxTeamMembers   int
}

type Circuit struct {
	ID     int64
	Region string
	Season Season
}

// Membership is one team the player captains or belongs to in a season.
type Membership struct {
	TeamID    int64
	CircuitID int64
	Region    string
}

type TeamSnapshot struct {
	ID         int64
	Circuit    Circuit
	CaptainID  *int64
	InviteCode string
	MemberIDs  []int64
}

// CanAddMembers reports whether the roster is open and below the season's size limit.
func (t TeamSnapshot) CanAddMembers() bool {
	return t.Circuit.Season.RostersOpen && len(t.MemberIDs) < t.Circuit.Season.MaxTeamMembers
}

func (t TeamSnapshot) HasMember(playerID int64) bool {
	for _, id := range t.MemberIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

type MatchSnapshot struct {
	ID            int64
	HomeID        int64
	AwayID        *int64
	HomeCaptainID *int64
	AwayCaptainID *int64
	Season        Season
	HasResult     bool
}

// Teams returns the match's participating team ids; byes have only the home team.
func (m MatchSnapshot) Teams() []int64 {
	if m.AwayID == nil {
		return []int64{m.HomeID}
	}
	return []int64{m.HomeID, *m.AwayID}
}

// Involves reports whether teamID is the home or away team.
func (m MatchSnapshot) Involves(teamID int64) bool {
	if teamID == m.HomeID {
		return true
	}
	return m.AwayID != nil && *m.AwayID == teamID
}

func (m MatchSnapshot) isCaptain(id Identity) bool {
	return id.isPlayer(m.HomeCaptainID) || id.isPlayer(m.AwayCaptainID)
}

// regionalMemberships drops All-region teams, which are uncapped.
func regionalMemberships(existing []Membership) []Membership {
	seen := make(map[int64]struct{}, len(existing))
	out := make([]Membership, 0, len(existing))
	for _, m := range existing {
		if m.Region == RegionAll {
			continue
		}
		if _, ok := seen[m.TeamID]; ok {
			continue
		}
		seen[m.TeamID] = struct{}{}
		out = append(out, m)
	}
	return out
}

func inCircuit(existing []Membership, circuitID int64) bool {
	for _, m := range existing {
		if m.CircuitID == circuitID {
			return true
		}
	}
	return false
}
