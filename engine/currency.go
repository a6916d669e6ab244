package engine

import "github.com/hybridboard/gametable-backend/engine/state"

// currencyModule owns every balance mutation. Other modules never touch
// Money directly; they credit and charge through here so bankruptcy and
// the money-threshold victory are checked in exactly one place.
type currencyModule struct {
	s *Session
}

// credit adds to a player's balance.
func (m *currencyModule) credit(playerID string, amount int) {
	if amount == 0 {
		return
	}
	p := m.s.st.Players[playerID]
	p.Money += amount
	m.s.patchPlayer(state.PlayerPatch{ID: playerID, Money: state.IntPtr(p.Money)})
	m.s.emit(MoneyChanged{PlayerID: playerID, Money: p.Money})
	m.s.checkMoneyVictory()
}

// canAfford reports whether the player can pay amount outright.
func (m *currencyModule) canAfford(playerID string, amount int) bool {
	return m.s.st.Players[playerID].Money >= amount
}

// debit subtracts an amount the caller already verified is affordable.
func (m *currencyModule) debit(playerID string, amount int) {
	if amount == 0 {
		return
	}
	p := m.s.st.Players[playerID]
	p.Money -= amount
	m.s.patchPlayer(state.PlayerPatch{ID: playerID, Money: state.IntPtr(p.Money)})
	m.s.emit(MoneyChanged{PlayerID: playerID, Money: p.Money})
}

// charge collects an obligatory payment (rent, tax, fine, card effect).
// creditorID may be empty for payments to the bank. If the payer cannot
// cover the amount, whatever they hold goes to the creditor and the
// bankruptcy flow removes them from rotation.
func (m *currencyModule) charge(payerID string, amount int, creditorID string) {
	if amount <= 0 {
		return
	}
	p := m.s.st.Players[payerID]
	if p.Money >= amount {
		m.debit(payerID, amount)
		if creditorID != "" {
			m.credit(creditorID, amount)
		}
		return
	}
	remainder := p.Money
	m.debit(payerID, remainder)
	if creditorID != "" && remainder > 0 {
		m.credit(creditorID, remainder)
	}
	m.bankrupt(payerID)
}

// bankrupt removes a player from turn rotation and returns their
// properties to the bank.
func (m *currencyModule) bankrupt(playerID string) {
	p := m.s.st.Players[playerID]
	if p.Bankrupt {
		return
	}
	p.Bankrupt = true
	m.s.patchPlayer(state.PlayerPatch{ID: playerID, Bankrupt: state.BoolPtr(true)})
	m.s.releaseProperties(playerID)
	m.s.dropFromTrade(playerID)
	m.s.emit(PlayerEliminated{PlayerID: playerID})
	m.s.emit(GameMessage{Text: p.Name + " is bankrupt"})
	m.s.checkLastActive()
}

// releaseProperties clears every ownership record of a player leaving the
// game; buildings go with them.
func (s *Session) releaseProperties(playerID string) {
	for _, cellID := range s.st.PropertiesOf(playerID) {
		delete(s.st.Ownership, cellID)
		s.patchCell(state.CellPatch{CellID: cellID, Cleared: true})
	}
}

// dropFromTrade cancels the active proposal when one of its parties
// leaves the game.
func (s *Session) dropFromTrade(playerID string) {
	t := s.st.Trade
	if t == nil || !t.Active {
		return
	}
	if t.ProposerID == playerID || t.TargetID == playerID {
		t.Active = false
		s.pending.Trade = &state.TradePatch{Proposal: nil}
		s.emit(TradeResolved{Status: TradeCancelled})
	}
}
