package engine

import (
	"github.com/hybridboard/gametable-backend/engine/board"
	"github.com/hybridboard/gametable-backend/engine/state"
)

type deckKind string

const (
	deckChance deckKind = "chance"
	deckChest  deckKind = "chest"
)

// cardsModule owns the two effect decks. The draw order is shuffled once
// at session start and lives only on the host; clients see a drawn card's
// effect, never future deck order.
type cardsModule struct {
	s *Session
}

// shuffle deals both decks into a random cyclic draw order using the
// session's seeded source.
func (m *cardsModule) shuffle() {
	m.s.st.Chance = m.shuffled(len(m.s.decks.Chance))
	m.s.st.Chest = m.shuffled(len(m.s.decks.Chest))
}

func (m *cardsModule) shuffled(n int) state.DeckState {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	m.s.roller.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return state.DeckState{Order: order}
}

// draw advances the deck cursor (wrapping after the last card), announces
// the card, and applies its effect. Effects that move the pawn re-enter
// the landing resolution, so a draw can cascade into rent or another
// draw.
func (m *cardsModule) draw(p *state.PlayerRecord, kind deckKind) {
	s := m.s
	var card board.Card
	switch kind {
	case deckChance:
		card = s.decks.Chance[s.st.Chance.Draw()]
	default:
		card = s.decks.Chest[s.st.Chest.Draw()]
	}
	s.emit(CardDrawn{PlayerID: p.ID, Deck: string(kind), Description: card.Description})
	m.apply(p, card)
}

// apply is the fixed dispatch over card kinds.
func (m *cardsModule) apply(p *state.PlayerRecord, card board.Card) {
	s := m.s
	switch card.Kind {
	case board.CardMoveTo:
		s.mods.Movement.moveTo(p, card.Position, true)
	case board.CardMoveNearest:
		if cell, err := s.layout.NearestOfKind(p.Position, card.TargetKind); err == nil {
			s.mods.Movement.moveTo(p, cell.Position, true)
		}
	case board.CardMoveBy:
		s.mods.Movement.moveBy(p, card.Amount)
	case board.CardMoney:
		if s.mods.Currency == nil {
			return
		}
		if card.Amount >= 0 {
			s.mods.Currency.credit(p.ID, card.Amount)
		} else {
			s.mods.Currency.charge(p.ID, -card.Amount, "")
		}
	case board.CardMoneyEach:
		m.moneyEach(p, card.Amount)
	case board.CardGoToJail:
		s.mods.Movement.sendToJail(p)
	case board.CardJailToken:
		p.JailTokens++
		s.patchPlayer(state.PlayerPatch{ID: p.ID, JailTokens: state.IntPtr(p.JailTokens)})
	case board.CardRepairs:
		if s.mods.Currency == nil || s.mods.Property == nil {
			return
		}
		houses, hotels := s.mods.Property.buildingCount(p.ID)
		cost := houses*card.PerHouse + hotels*card.PerHotel
		if cost > 0 {
			s.mods.Currency.charge(p.ID, cost, "")
		}
	}
}

// moneyEach settles the drawer against every other active player: a
// positive amount collects from each, a negative amount pays each. Either
// direction can bankrupt a payer mid-resolution.
func (m *cardsModule) moneyEach(p *state.PlayerRecord, amount int) {
	s := m.s
	if s.mods.Currency == nil || amount == 0 {
		return
	}
	for _, id := range s.st.Order {
		other := s.st.Players[id]
		if id == p.ID || !other.Active() {
			continue
		}
		if amount > 0 {
			s.mods.Currency.charge(id, amount, p.ID)
		} else {
			s.mods.Currency.charge(p.ID, -amount, id)
			if p.Bankrupt {
				return
			}
		}
	}
}
