package eligibility

const (
	ReasonCreateMatchService   = "Only service accounts can create matches."
	ReasonSubmitSignIn         = "Permission Error: You must be signed in to submit a match result."
	ReasonSubmitNoPlayer       = "No Player object. You must be registered as a Player to submit a match result."
	ReasonSubmitNotCaptain     = "Permission Error: Only team captains can submit match results."
	ReasonSubmitSeasonInactive = "Permission Error: You can only submit match results for active seasons."
	ReasonSubmitResultExists   = "Permission Error: There is already a result submitted for this match."
	ReasonScheduleNotPermitted = "Permission Error: You cannot update this match."
)

// CanCreateMatch allows service identities only.
func CanCreateMatch(id Identity) error {
	if !id.Authenticated || !id.IsService {
		return deny(KindAuthorization, ReasonCreateMatchService)
	}
	return nil
}

// CanUpdateMatchSchedule covers start time and caster changes. Only a
// captain of either side may change them, and only while the season is
// active and no result exists.
func CanUpdateMatchSchedule(id Identity, match MatchSnapshot) bool {
	if _, ok := id.player(); !ok {
		return false
	}
	return match.isCaptain(id) && match.Season.IsActive && !match.HasResult
}

// CanSubmitResult decides whether id may submit the match's result.
func CanSubmitResult(id Identity, match MatchSnapshot) error {
	if !id.Authenticated {
		return deny(KindAuthentication, ReasonSubmitSignIn)
	}
	if _, ok := id.player(); !ok {
		return deny(KindAuthentication, ReasonSubmitNoPlayer)
	}
	if !match.isCaptain(id) {
		return deny(KindAuthorization, ReasonSubmitNotCaptain)
	}
	if !match.Season.IsActive {
		return deny(KindValidation, ReasonSubmitSeasonInactive)
	}
	if match.HasResult {
		return deny(KindConflict, ReasonSubmitResultExists)
	}
	return nil
}

// ResultExists is the denial reported when the store rejects a second
// result for a match that passed CanSubmitResult concurrently.
func ResultExists() error {
	return deny(KindConflict, ReasonSubmitResultExists)
}

// Invalid builds a validation denial with the given reason.
func Invalid(reason string) error {
	return deny(KindValidation, reason)
}
