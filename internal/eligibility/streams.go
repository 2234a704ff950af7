package eligibility

const ReasonManageStreamsService = "Only service accounts can report streams."

// CanManageStreams allows service identities only. Streams are pushed by
// the bot that watches Twitch and YouTube.
func CanManageStreams(id Identity) error {
	if !id.Authenticated || !id.IsService {
		return deny(KindAuthorization, ReasonManageStreamsService)
	}
	return nil
}
