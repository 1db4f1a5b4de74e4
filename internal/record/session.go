package record

// SessionMode is the game session mode.
type SessionMode uint8

const (
	ModePvE SessionMode = iota
	ModePvP
)

func (m SessionMode) String() string {
	switch m {
	case ModePvE:
		return "PvE"
	case ModePvP:
		return "PvP"
	default:
		return "Unknown"
	}
}

// SessionResult is the outcome recorded when a session ends.
type SessionResult uint8

const (
	ResultOngoing SessionResult = iota
	ResultAWon
	ResultBWon
	ResultDraw
)

func (r SessionResult) String() string {
	switch r {
	case ResultOngoing:
		return "Ongoing"
	case ResultAWon:
		return "AWon"
	case ResultBWon:
		return "BWon"
	case ResultDraw:
		return "Draw"
	default:
		return "Unknown"
	}
}

// Session is a game session record. Active transitions true→false exactly
// once; Result is Ongoing iff Active.
type Session struct {
	ID           uint64
	Creator      Identity
	ParticipantA Identity
	ParticipantB Identity // ZeroIdentity for PvE
	Mode         SessionMode
	StartTime    int64
	EndTime      *int64
	Result       SessionResult
	Active       bool
}

func (s *Session) Kind() Kind { return KindSession }

func (s *Session) Authority() Identity { return s.Creator }

func (s *Session) Clone() Record {
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	return &c
}

func (s *Session) CanonicalBytes() []byte {
	buf := make([]byte, 0, 144)
	buf = append(buf, byte(KindSession))
	buf = appendUint64LE(buf, s.ID)
	buf = append(buf, s.Creator[:]...)
	buf = append(buf, s.ParticipantA[:]...)
	buf = append(buf, s.ParticipantB[:]...)
	buf = append(buf, byte(s.Mode))
	buf = appendInt64LE(buf, s.StartTime)
	if s.EndTime != nil {
		buf = append(buf, 1)
		buf = appendInt64LE(buf, *s.EndTime)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, byte(s.Result))
	buf = appendBool(buf, s.Active)
	return buf
}
