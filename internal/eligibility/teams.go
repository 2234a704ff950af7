package eligibility

const (
	ReasonCreateSignIn         = "Authentication Error: Sign in to create a team."
	ReasonNoPlayer             = "Authentication Error: Your account does not have a Player associated with it."
	ReasonRegistrationClosed   = "Permission Error: Cannot create new team, registration for this season has closed."
	ReasonTeamCap              = "Permission Error: You can only create two teams per season, one per region."
	ReasonAlreadyInCircuit     = "Permission Error: You have already registered a team for this circuit."
	ReasonRenameSignIn         = "Authentication Error: Sign in to rename your team."
	ReasonRenameNotCaptain     = "Permission Error: You must be the captain of this team to rename it."
	ReasonRenameSeasonInactive = "Permission Error: Only teams in active seasons may be renamed."
	ReasonRenameRegistration   = "Permission Error: Only teams in seasons with open registration may be renamed."
)

// CanCreateTeam decides whether id may register a new team in circuit.
// existing lists every team the player captains or belongs to in the
// circuit's season, All-region teams included.
func CanCreateTeam(id Identity, circuit Circuit, existing []Membership) error {
	if !id.Authenticated {
		return deny(KindAuthentication, ReasonCreateSignIn)
	}
	if _, ok := id.player(); !ok {
		return deny(KindAuthentication, ReasonNoPlayer)
	}
	if !circuit.Season.RegistrationOpen {
		return deny(KindValidation, ReasonRegistrationClosed)
	}

	regional := regionalMemberships(existing)
	switch {
	case len(regional) >= MaxRegionalTeams:
		return deny(KindConflict, ReasonTeamCap)
	case len(regional) == 1 && regional[0].Region == circuit.Region:
		return deny(KindConflict, ReasonAlreadyInCircuit)
	}

	// Holds for All-region circuits too.
	if inCircuit(existing, circuit.ID) {
		return deny(KindConflict, ReasonAlreadyInCircuit)
	}
	return nil
}

// CanRenameTeam decides whether id may change the team's name. Callers
// apply only the name on success.
func CanRenameTeam(id Identity, team TeamSnapshot) error {
	if !id.Authenticated {
		return deny(KindAuthentication, ReasonRenameSignIn)
	}
	if _, ok := id.player(); !ok {
		return deny(KindAuthentication, ReasonNoPlayer)
	}
	if !id.isPlayer(team.CaptainID) {
		return deny(KindAuthorization, ReasonRenameNotCaptain)
	}
	if !team.Circuit.Season.IsActive {
		return deny(KindAuthorization, ReasonRenameSeasonInactive)
	}
	if !team.Circuit.Season.RegistrationOpen {
		return deny(KindAuthorization, ReasonRenameRegistration)
	}
	return nil
}

// CanJoinTeam decides whether id may join team with the supplied invite code.
// existing has the same meaning as for CanCreateTeam, scoped to the team's season.
func CanJoinTeam(id Identity, team TeamSnapshot, inviteCode string, existing []Membership) bool {
	playerID, ok := id.player()
	if !ok {
		return false
	}
	if team.InviteCode == "" || inviteCode != team.InviteCode {
		return false
	}
	if !team.CanAddMembers() {
		return false
	}
	if team.HasMember(playerID) {
		return false
	}

	if team.Circuit.Region == RegionAll {
		return !inCircuit(existing, team.Circuit.ID)
	}

	regional := regionalMemberships(existing)
	switch len(regional) {
	case 0:
		return true
	case 1:
		return regional[0].Region != team.Circuit.Region
	default:
		return false
	}
}

// CanRegenerateInviteCode allows only the team captain.
func CanRegenerateInviteCode(id Identity, team TeamSnapshot) bool {
	return id.isPlayer(team.CaptainID)
}
