package protocol

// Action codes shared with the phaser/vest firmware. The numeric values are a
// wire contract and must not be renumbered.
const (
	ActionKeepAlive        = 0
	ActionTimesync         = 1
	ActionJoinGame         = 2
	ActionJoinedGame       = 3
	ActionLeaveGame        = 4
	ActionGameClosed       = 5
	ActionGotHit           = 6
	ActionSendShot         = 7
	ActionHitValid         = 8
	ActionShotHit          = 9
	ActionAddAmmo          = 10
	ActionJoinedServer     = 11
	ActionFullDataUpdate   = 12
	ActionServerJoinDenied = 13
	ActionInvalidGame      = 14
	ActionPowerOff         = 15
	ActionHWStatus         = 16
	ActionHitpointInit     = 17
	ActionHitpointGotHit   = 18
	ActionHitpointHitValid = 19
)

// Events used as the "e" discriminator on inbound socket frames.
const (
	EventJoin     = "join"
	EventMessage  = "message"
	EventSpectate = "spectate"
)
