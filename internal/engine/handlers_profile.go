package engine

import (
	"GameLedger/internal/addr"
	"GameLedger/internal/ledger"
	"GameLedger/internal/op"
	"GameLedger/internal/record"
)

func validateName(name string) error {
	if name == "" {
		return ledger.Errf(ledger.CodeEmptyName, "name cannot be empty")
	}
	if len(name) > record.MaxNameLen {
		return ledger.Errf(ledger.CodeNameTooLong, "name is %d chars, max %d", len(name), record.MaxNameLen)
	}
	return nil
}

func (e *Engine) handleCreateProfile(req *op.CreateProfile) (*ledger.Journal, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := e.verifyCreateRef(req.Profile, addr.ProfileSeeds(req.Signer())); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	if err := e.lifecycle.StageCreate(j, req.Profile.ID, record.NewProfile(req.Signer(), req.Name)); err != nil {
		return nil, err
	}
	return j, nil
}

func (e *Engine) handleUpdateProfile(req *op.UpdateProfile) (*ledger.Journal, error) {
	if req.Health > record.MaxHealth {
		return nil, ledger.Errf(ledger.CodeInvalidHealth, "health %d exceeds max %d", req.Health, record.MaxHealth)
	}
	if req.Level < record.MinLevel || req.Level > record.MaxLevel {
		return nil, ledger.Errf(ledger.CodeInvalidLevel, "level %d outside [%d,%d]", req.Level, record.MinLevel, record.MaxLevel)
	}
	if req.Stamina > record.MaxStamina {
		return nil, ledger.Errf(ledger.CodeInvalidStamina, "stamina %d exceeds max %d", req.Stamina, record.MaxStamina)
	}

	profile, err := e.loadProfile(req.Profile)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(profile, req.Signer()); err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	after := profile.Clone().(*record.Profile)
	after.Health = req.Health
	after.Stamina = req.Stamina
	after.Experience = req.Experience
	after.Level = req.Level
	after.Tokens = req.Tokens
	j.StageUpdate(req.Profile.ID, profile, after)
	return j, nil
}

func (e *Engine) handleCloseProfile(req *op.CloseProfile) (*ledger.Journal, error) {
	profile, err := e.loadProfile(req.Profile)
	if err != nil {
		return nil, err
	}

	j := e.newJournal(req)
	reclaimed, err := e.lifecycle.StageClose(j, req.Profile.ID, profile, req.Signer(), req.Recipient)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("identifier", reclaimed.Identifier.String()).
		Str("recipient", reclaimed.Recipient.String()).
		Int("bytes", reclaimed.Bytes).
		Msg("profile closed, storage reclaimed")
	return j, nil
}

func (e *Engine) handleStartSession(req *op.StartSession) (*ledger.Journal, error) {
	if err := e.verifyCreateRef(req.Session, addr.SessionSeeds(req.SessionID)); err != nil {
		return nil, err
	}

	session := &record.Session{
		ID:           req.SessionID,
		Creator:      req.Signer(),
		ParticipantA: req.Signer(),
		ParticipantB: req.Opponent, // ZeroIdentity for PvE
		Mode:         req.Mode,
		StartTime:    req.OpTime(),
		Result:       record.ResultOngoing,
		Active:       true,
	}

	j := e.newJournal(req)
	if err := e.lifecycle.StageCreate(j, req.Session.ID, session); err != nil {
		return nil, err
	}
	return j, nil
}

func (e *Engine) handleEndSession(req *op.EndSession) (*ledger.Journal, error) {
	if req.Result == record.ResultOngoing {
		return nil, ledger.Errf(ledger.CodeSessionNotActive, "ending a session requires a final result")
	}

	session, err := e.loadSession(req.Session)
	if err != nil {
		return nil, err
	}
	if err := e.gate.Verify(session, req.Signer()); err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, ledger.Errf(ledger.CodeSessionAlreadyEnded, "session %d has already ended", session.ID)
	}

	j := e.newJournal(req)
	after := session.Clone().(*record.Session)
	endTime := req.OpTime()
	after.EndTime = &endTime
	after.Result = req.Result
	after.Active = false
	j.StageUpdate(req.Session.ID, session, after)
	return j, nil
}
