package engine

import "github.com/hybridboard/gametable-backend/engine/state"

// tradeModule runs the negotiation sub-state-machine. One proposal may be
// active session-wide; it leaves the Proposed state only through accept,
// reject or cancel. Trade commands are not turn-gated.
type tradeModule struct {
	s *Session
}

// propose opens the trade slot after validating the proposer can actually
// deliver everything offered. Cells carrying buildings or mortgages are
// not tradable.
func (m *tradeModule) propose(playerID string, cmd ProposeTrade) error {
	s := m.s
	if t := s.st.Trade; t != nil && t.Active {
		return reject(CodeTradeActive, "another trade is pending")
	}
	target, ok := s.st.Players[cmd.TargetID]
	if !ok || cmd.TargetID == playerID {
		return reject(CodeInvalidTrade, "invalid trade partner")
	}
	if !target.Active() {
		return reject(CodeInvalidTrade, "%s is out of the game", target.Name)
	}
	if cmd.OfferedMoney < 0 || cmd.RequestedMoney < 0 {
		return reject(CodeInvalidTrade, "money amounts must be non-negative")
	}
	if len(cmd.OfferedCells)+len(cmd.RequestedCells)+cmd.OfferedMoney+cmd.RequestedMoney == 0 {
		return reject(CodeInvalidTrade, "empty trade")
	}
	if err := m.checkCells(cmd.OfferedCells, playerID); err != nil {
		return err
	}
	if err := m.checkCells(cmd.RequestedCells, cmd.TargetID); err != nil {
		return err
	}
	if s.mods.Currency != nil && !s.mods.Currency.canAfford(playerID, cmd.OfferedMoney) {
		return reject(CodeInsufficientFunds, "you cannot cover the offered money")
	}

	prop := &state.TradeProposal{
		ProposerID:     playerID,
		TargetID:       cmd.TargetID,
		OfferedCells:   append([]string(nil), cmd.OfferedCells...),
		RequestedCells: append([]string(nil), cmd.RequestedCells...),
		OfferedMoney:   cmd.OfferedMoney,
		RequestedMoney: cmd.RequestedMoney,
		Active:         true,
	}
	s.st.Trade = prop
	// The delta carries a snapshot: the live record's Active flag moves
	// on later commands, possibly before the transport marshals this
	// broadcast.
	snapshot := *prop
	s.pending.Trade = &state.TradePatch{Proposal: &snapshot}
	s.emit(TradeProposed{Proposal: *prop})
	return nil
}

// respond lets the designated target accept or reject. Accepting performs
// the atomic swap: every re-check runs against current state, and nothing
// moves unless everything can.
func (m *tradeModule) respond(playerID string, accept bool) error {
	s := m.s
	t := s.st.Trade
	if t == nil || !t.Active {
		return reject(CodeNoActiveTrade, "no trade to respond to")
	}
	if t.TargetID != playerID {
		return reject(CodeNotTradeTarget, "this trade is not addressed to you")
	}
	if !accept {
		m.close(TradeRejected)
		return nil
	}

	// Conditions may have drifted between proposal and acceptance; the
	// whole swap is dropped rather than applied partially. The slot still
	// resolves, and everyone sees why.
	drift := m.checkCells(t.OfferedCells, t.ProposerID)
	if drift == nil {
		drift = m.checkCells(t.RequestedCells, t.TargetID)
	}
	if drift == nil && s.mods.Currency != nil {
		if !s.mods.Currency.canAfford(t.ProposerID, t.OfferedMoney) ||
			!s.mods.Currency.canAfford(t.TargetID, t.RequestedMoney) {
			drift = reject(CodeInsufficientFunds, "funds no longer cover the trade")
		}
	}
	if drift != nil {
		s.emit(GameMessage{Text: "trade fell through: " + drift.Error()})
		m.close(TradeRejected)
		return nil
	}

	for _, cellID := range t.OfferedCells {
		m.transferCell(cellID, t.TargetID)
	}
	for _, cellID := range t.RequestedCells {
		m.transferCell(cellID, t.ProposerID)
	}
	if s.mods.Currency != nil {
		if t.OfferedMoney > 0 {
			s.mods.Currency.debit(t.ProposerID, t.OfferedMoney)
			s.mods.Currency.credit(t.TargetID, t.OfferedMoney)
		}
		if t.RequestedMoney > 0 {
			s.mods.Currency.debit(t.TargetID, t.RequestedMoney)
			s.mods.Currency.credit(t.ProposerID, t.RequestedMoney)
		}
	}
	m.close(TradeAccepted)
	return nil
}

// cancel withdraws a still-pending proposal; only the proposer may.
func (m *tradeModule) cancel(playerID string) error {
	t := m.s.st.Trade
	if t == nil || !t.Active {
		return reject(CodeNoActiveTrade, "no trade to cancel")
	}
	if t.ProposerID != playerID {
		return reject(CodeNotProposer, "only the proposer can cancel")
	}
	m.close(TradeCancelled)
	return nil
}

func (m *tradeModule) close(status string) {
	m.s.st.Trade.Active = false
	m.s.pending.Trade = &state.TradePatch{Proposal: nil}
	m.s.emit(TradeResolved{Status: status})
}

// checkCells verifies every listed cell is owned by the expected party
// and clean of buildings and mortgages.
func (m *tradeModule) checkCells(cellIDs []string, ownerID string) error {
	seen := make(map[string]bool, len(cellIDs))
	for _, cellID := range cellIDs {
		if seen[cellID] {
			return reject(CodeInvalidTrade, "cell %q listed twice", cellID)
		}
		seen[cellID] = true
		own, ok := m.s.st.Owner(cellID)
		if !ok || own.OwnerID != ownerID {
			return reject(CodeInvalidTrade, "cell %q is not %s's to trade", cellID, ownerID)
		}
		if own.Houses > 0 || own.Hotel || own.Mortgaged {
			return reject(CodeInvalidTrade, "cell %q has buildings or a mortgage", cellID)
		}
	}
	return nil
}

func (m *tradeModule) transferCell(cellID, newOwner string) {
	own := m.s.st.Ownership[cellID]
	own.OwnerID = newOwner
	m.s.patchCell(state.CellPatch{CellID: cellID, OwnerID: state.StrPtr(newOwner)})
}
