package eligibility

const (
	ReasonEditPlayerSignIn   = "Authentication Error: You must be signed in to edit a player profile."
	ReasonEditPlayerNotOwner = "Permission Error: You can only edit your own player profile."
)

// CanEditPlayer allows a player to change their own profile and nobody
// else's. Service identities have no player and are refused too.
func CanEditPlayer(id Identity, playerID int64) error {
	if !id.Authenticated {
		return deny(KindAuthentication, ReasonEditPlayerSignIn)
	}
	if !id.isPlayer(&playerID) {
		return deny(KindAuthorization, ReasonEditPlayerNotOwner)
	}
	return nil
}
