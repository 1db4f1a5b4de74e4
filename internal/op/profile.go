package op

import "GameLedger/internal/record"

// CreateProfile initializes a fighter profile bound to the signer.
type CreateProfile struct {
	Base
	Profile RecordRef
	Name    string
}

func (o *CreateProfile) OpKind() Kind { return KindCreateProfile }

// UpdateProfile replaces the profile's mutable stats, each checked against
// its declared domain.
type UpdateProfile struct {
	Base
	Profile    RecordRef
	Health     uint16
	Stamina    uint16
	Experience uint32
	Level      uint8
	Tokens     uint64
}

func (o *UpdateProfile) OpKind() Kind { return KindUpdateProfile }

// CloseProfile destroys the profile, releasing its backing storage to the
// recipient and permanently tombstoning the identifier.
type CloseProfile struct {
	Base
	Profile   RecordRef
	Recipient record.Identity
}

func (o *CloseProfile) OpKind() Kind { return KindCloseProfile }

// StartSession creates a game session; the signer becomes creator and
// participant A.
type StartSession struct {
	Base
	Session   RecordRef
	SessionID uint64
	Opponent  record.Identity // ZeroIdentity for PvE
	Mode      record.SessionMode
}

func (o *StartSession) OpKind() Kind { return KindStartSession }

// EndSession records the outcome and deactivates the session.
type EndSession struct {
	Base
	Session RecordRef
	Result  record.SessionResult
}

func (o *EndSession) OpKind() Kind { return KindEndSession }
