package dbgen

import (
	"database/sql"
	"time"
)

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsService    bool      `json:"isService"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Caster struct {
	ID       int64          `json:"id"`
	PlayerID int64          `json:"playerId"`
	BioLink  sql.NullString `json:"bioLink"`
}

type Circuit struct {
	ID       int64          `json:"id"`
	SeasonID int64          `json:"seasonId"`
	Region   string         `json:"region"`
	Tier     string         `json:"tier"`
	Name     sql.NullString `json:"name"`
}

type Dynasty struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Game struct {
	ID              int64         `json:"id"`
	SetID           int64         `json:"setId"`
	Number          int64         `json:"number"`
	Map             string        `json:"map"`
	WinCondition    string        `json:"winCondition"`
	WinnerID        sql.NullInt64 `json:"winnerId"`
	LoserID         sql.NullInt64 `json:"loserId"`
	DurationSeconds sql.NullInt64 `json:"durationSeconds"`
}

type League struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Match struct {
	ID              int64          `json:"id"`
	HomeID          int64          `json:"homeId"`
	AwayID          sql.NullInt64  `json:"awayId"`
	CircuitID       int64          `json:"circuitId"`
	RoundID         sql.NullInt64  `json:"roundId"`
	StartTime       sql.NullTime   `json:"startTime"`
	PrimaryCasterID sql.NullInt64  `json:"primaryCasterId"`
	VodLink         sql.NullString `json:"vodLink"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type Player struct {
	ID              int64          `json:"id"`
	Name            string         `json:"name"`
	DiscordUsername string         `json:"discordUsername"`
	TwitchUsername  sql.NullString `json:"twitchUsername"`
	AccountID       sql.NullInt64  `json:"-"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type PlayerMapping struct {
	ID       int64  `json:"id"`
	ResultID int64  `json:"resultId"`
	Nickname string `json:"nickname"`
	PlayerID int64  `json:"playerId"`
}

type Result struct {
	ID        int64          `json:"id"`
	MatchID   int64          `json:"matchId"`
	Status    string         `json:"status"`
	WinnerID  int64          `json:"winnerId"`
	LoserID   int64          `json:"loserId"`
	Notes     sql.NullString `json:"notes"`
	Source    sql.NullString `json:"source"`
	CreatedBy sql.NullInt64  `json:"createdBy"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Round struct {
	ID          int64          `json:"id"`
	SeasonID    int64          `json:"seasonId"`
	RoundNumber int64          `json:"roundNumber"`
	Name        sql.NullString `json:"name"`
	Bracket     sql.NullString `json:"bracket"`
}

type Season struct {
	ID               int64     `json:"id"`
	LeagueID         int64     `json:"leagueId"`
	Name             string    `json:"name"`
	IsActive         bool      `json:"isActive"`
	RegistrationOpen bool      `json:"registrationOpen"`
	RostersOpen      bool      `json:"rostersOpen"`
	MaxTeamMembers   int64     `json:"maxTeamMembers"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Set struct {
	ID       int64 `json:"id"`
	ResultID int64 `json:"resultId"`
	Number   int64 `json:"number"`
	WinnerID int64 `json:"winnerId"`
	LoserID  int64 `json:"loserId"`
}

type SetLog struct {
	ID       int64  `json:"id"`
	SetID    int64  `json:"setId"`
	Filename string `json:"filename"`
	Body     string `json:"body"`
}

type Stream struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Service   string    `json:"service"`
	StartTime time.Time `json:"startTime"`
	IsLive    bool      `json:"isLive"`
}

type Team struct {
	ID         int64         `json:"id"`
	CircuitID  int64         `json:"circuitId"`
	Name       string        `json:"name"`
	CaptainID  sql.NullInt64 `json:"captainId"`
	DynastyID  sql.NullInt64 `json:"dynastyId"`
	InviteCode string        `json:"-"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type TeamMapping struct {
	ID       int64  `json:"id"`
	ResultID int64  `json:"resultId"`
	Color    string `json:"color"`
	TeamID   int64  `json:"teamId"`
}
