package engine

import (
	"github.com/hybridboard/gametable-backend/engine/board"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// jailRollLimit is how many failed jail rolls are allowed before the fine
// is collected automatically.
const jailRollLimit = 3

// movementModule owns the pawn: dice rolls, board movement, jail, and the
// landing resolution every move funnels through. It is always composed;
// on sessions without a shared board a roll is just a throw.
type movementModule struct {
	s *Session
}

// roll throws the session dice and, on shared-board games, advances the
// pawn and resolves the landing. Doubles leave the roll flag unset so the
// player throws again; a third consecutive doubles sends them to jail.
func (m *movementModule) roll(playerID string) error {
	s := m.s
	if s.hasRolled {
		return reject(CodeAlreadyRolled, "you have already rolled the dice")
	}
	roll := s.roller.Roll()
	s.lastRoll = roll.Total
	s.emit(DiceRolled{PlayerID: playerID, Values: roll.Values, Total: roll.Total, Doubles: roll.Doubles})

	if !s.cfg.SharedBoard {
		s.hasRolled = true
		return nil
	}

	p := s.st.Players[playerID]
	if p.InJail {
		return m.jailRoll(p, roll.Total, roll.Doubles)
	}

	if roll.Doubles {
		s.doubleStreak++
		if s.doubleStreak >= 3 {
			s.hasRolled = true
			s.emit(GameMessage{Text: p.Name + " rolled three doubles in a row"})
			m.sendToJail(p)
			return nil
		}
	} else {
		s.hasRolled = true
	}
	m.moveBy(p, roll.Total)
	return nil
}

// jailRoll handles a throw made from jail: doubles release the player,
// the third failed attempt collects the fine and releases them anyway.
func (m *movementModule) jailRoll(p *state.PlayerRecord, total int, doubles bool) error {
	s := m.s
	s.hasRolled = true
	if doubles {
		m.leaveJail(p)
		m.moveBy(p, total)
		return nil
	}
	p.JailTurns++
	s.patchPlayer(state.PlayerPatch{ID: p.ID, JailTurns: state.IntPtr(p.JailTurns)})
	if p.JailTurns < jailRollLimit {
		s.emit(GameMessage{Text: p.Name + " stays in jail"})
		return nil
	}
	if s.mods.Currency != nil {
		s.mods.Currency.charge(p.ID, s.cfg.JailFine, "")
		if p.Bankrupt {
			return nil
		}
	}
	m.leaveJail(p)
	m.moveBy(p, total)
	return nil
}

// useJailToken spends a release token. The player still rolls to move.
func (m *movementModule) useJailToken(playerID string) error {
	s := m.s
	p := s.st.Players[playerID]
	if !p.InJail {
		return reject(CodeNotInJail, "you are not in jail")
	}
	if p.JailTokens < 1 {
		return reject(CodeNoJailToken, "no release token held")
	}
	if s.hasRolled {
		return reject(CodeAlreadyRolled, "too late this turn")
	}
	p.JailTokens--
	s.patchPlayer(state.PlayerPatch{ID: p.ID, JailTokens: state.IntPtr(p.JailTokens)})
	m.leaveJail(p)
	return nil
}

// payJailFine buys the player out before they roll.
func (m *movementModule) payJailFine(playerID string) error {
	s := m.s
	p := s.st.Players[playerID]
	if !p.InJail {
		return reject(CodeNotInJail, "you are not in jail")
	}
	if s.hasRolled {
		return reject(CodeAlreadyRolled, "too late this turn")
	}
	if !s.mods.Currency.canAfford(playerID, s.cfg.JailFine) {
		return reject(CodeInsufficientFunds, "cannot afford the fine")
	}
	s.mods.Currency.debit(playerID, s.cfg.JailFine)
	m.leaveJail(p)
	return nil
}

func (m *movementModule) leaveJail(p *state.PlayerRecord) {
	p.InJail = false
	p.JailTurns = 0
	m.s.patchPlayer(state.PlayerPatch{
		ID:        p.ID,
		InJail:    state.BoolPtr(false),
		JailTurns: state.IntPtr(0),
	})
	m.s.emit(GameMessage{Text: p.Name + " is out of jail"})
}

// sendToJail parks the pawn on the jail cell without passing start.
func (m *movementModule) sendToJail(p *state.PlayerRecord) {
	s := m.s
	p.Position = s.layout.JailPosition()
	p.InJail = true
	p.JailTurns = 0
	s.doubleStreak = 0
	s.patchPlayer(state.PlayerPatch{
		ID:        p.ID,
		Position:  state.IntPtr(p.Position),
		InJail:    state.BoolPtr(true),
		JailTurns: state.IntPtr(0),
	})
	s.emit(PlayerMoved{PlayerID: p.ID, Position: p.Position})
	s.emit(GameMessage{Text: p.Name + " goes to jail"})
}

// moveBy advances the pawn steps cells (negative moves backwards, which
// never collects the pass-start bonus) and resolves the landing.
func (m *movementModule) moveBy(p *state.PlayerRecord, steps int) {
	size := m.s.layout.Size()
	passed := steps > 0 && p.Position+steps >= size
	pos := ((p.Position+steps)%size + size) % size
	m.place(p, pos, passed)
	m.resolveLanding(p)
}

// moveTo places the pawn on an absolute position, crediting the
// pass-start bonus when the move travels forward past start.
func (m *movementModule) moveTo(p *state.PlayerRecord, pos int, resolve bool) {
	passed := pos <= p.Position
	m.place(p, pos, passed)
	if resolve {
		m.resolveLanding(p)
	}
}

func (m *movementModule) place(p *state.PlayerRecord, pos int, passedStart bool) {
	s := m.s
	p.Position = pos
	s.patchPlayer(state.PlayerPatch{ID: p.ID, Position: state.IntPtr(pos)})
	s.emit(PlayerMoved{PlayerID: p.ID, Position: pos, PassedStart: passedStart})
	if passedStart && s.mods.Currency != nil && s.cfg.PassStartBonus > 0 {
		s.mods.Currency.credit(p.ID, s.cfg.PassStartBonus)
	}
}

// resolveLanding dispatches the landed-on cell to the module that owns
// it. Card effects that move the pawn re-enter here, so one throw can
// cascade into a rent payment.
func (m *movementModule) resolveLanding(p *state.PlayerRecord) {
	s := m.s
	cell, err := s.layout.ByPosition(p.Position)
	if err != nil {
		return
	}
	switch cell.Kind {
	case board.KindGoToJail:
		m.sendToJail(p)
	case board.KindTax:
		if s.mods.Currency != nil {
			s.emit(GameMessage{Text: p.Name + " pays " + cell.Name})
			s.mods.Currency.charge(p.ID, cell.Amount, "")
		}
	case board.KindChance:
		if s.mods.Cards != nil {
			s.mods.Cards.draw(p, deckChance)
		}
	case board.KindChest:
		if s.mods.Cards != nil {
			s.mods.Cards.draw(p, deckChest)
		}
	case board.KindProperty, board.KindRail, board.KindUtility:
		if s.mods.Property != nil {
			s.mods.Property.landed(p, cell)
		}
	}
}
