package engine

import (
	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// combatModule owns the per-player grids: ship placement during the
// placement phase, attacks during play, and elimination when a player's
// last ship cell is hit.
type combatModule struct {
	s *Session

	// remaining ships to place, per player per ship type. Host-private
	// bookkeeping, like the placements themselves.
	remaining map[string]map[string]int
}

// setup builds empty boards and placement quotas for every seated player.
func (m *combatModule) setup() {
	s := m.s
	m.remaining = make(map[string]map[string]int, len(s.st.Order))
	for _, id := range s.st.Order {
		s.st.Boards[id] = state.NewCombatBoard(s.cfg.GridWidth, s.cfg.GridHeight)
		quota := make(map[string]int, len(s.cfg.Ships))
		for _, spec := range s.cfg.Ships {
			quota[spec.Name] = spec.Count
		}
		m.remaining[id] = quota
		s.patchCombat(state.CombatPatch{PlayerID: id, ShipsPlaced: state.IntPtr(0)})
	}
}

// placeShip validates and records one placement. Placement is phase-gated
// rather than turn-gated: players place concurrently, each until their
// quota is spent. When the last quota empties the session moves into
// play.
func (m *combatModule) placeShip(playerID string, cmd PlaceShip) error {
	s := m.s
	if s.st.Phase != state.PhasePlacingShips {
		return reject(CodeWrongPhase, "placement phase is over")
	}
	quota := m.remaining[playerID]
	spec, ok := m.shipSpec(cmd.Ship)
	if !ok {
		return reject(CodeInvalidPlacement, "unknown ship type %q", cmd.Ship)
	}
	if quota[cmd.Ship] < 1 {
		return reject(CodeInvalidPlacement, "no %s left to place", cmd.Ship)
	}

	board := s.st.Boards[playerID]
	cells := make([]state.Coord, spec.Length)
	for i := range cells {
		c := cmd.At
		if cmd.Horizontal {
			c.Col += i
		} else {
			c.Row += i
		}
		if !board.InBounds(c) {
			return reject(CodeInvalidPlacement, "%s does not fit the board there", cmd.Ship)
		}
		if board.Occupied(c) {
			return reject(CodeInvalidPlacement, "cell overlaps another ship")
		}
		cells[i] = c
	}

	board.Ships = append(board.Ships, state.Ship{Name: cmd.Ship, Cells: cells})
	quota[cmd.Ship]--
	placed := len(board.Ships)
	s.patchCombat(state.CombatPatch{PlayerID: playerID, ShipsPlaced: state.IntPtr(placed)})
	s.emit(ShipPlaced{PlayerID: playerID, Remaining: m.quotaLeft(playerID)})

	m.finishPlacement()
	return nil
}

// finishPlacement moves the session into play once every active player
// has spent their quota. Called after each placement and after a player
// leaves mid-placement, since a leaver's unspent quota must not hold the
// remaining players in the placement phase.
func (m *combatModule) finishPlacement() {
	s := m.s
	if s.st.Phase != state.PhasePlacingShips || !m.allPlaced() {
		return
	}
	s.setPhase(state.PhaseInProgress)
	for i, id := range s.st.Order {
		if s.st.Players[id].Active() {
			s.setTurn(i)
			break
		}
	}
	s.emit(GameMessage{Text: "all ships placed"})
	s.emit(TurnChanged{PlayerID: s.st.CurrentPlayer()})
}

func (m *combatModule) shipSpec(name string) (rules.ShipSpec, bool) {
	for _, spec := range m.s.cfg.Ships {
		if spec.Name == name {
			return spec, true
		}
	}
	return rules.ShipSpec{}, false
}

func (m *combatModule) quotaLeft(playerID string) int {
	left := 0
	for _, n := range m.remaining[playerID] {
		left += n
	}
	return left
}

// allPlaced reports whether every player still in the game has spent
// their placement quota. Players who left or were eliminated no longer
// gate the transition.
func (m *combatModule) allPlaced() bool {
	for _, id := range m.s.st.Order {
		if !m.s.st.Players[id].Active() {
			continue
		}
		if m.quotaLeft(id) > 0 {
			return false
		}
	}
	return true
}

// attack fires one shot at another player's grid. Each (target, cell)
// pair resolves at most once, ever; repeats are rejected with no state
// change. One attack per turn.
func (m *combatModule) attack(attackerID string, cmd Attack) error {
	s := m.s
	if s.hasAttacked {
		return reject(CodeAlreadyActed, "you have already attacked this turn")
	}
	if cmd.TargetID == attackerID {
		return reject(CodeCellUnavailable, "cannot attack your own board")
	}
	target, ok := s.st.Players[cmd.TargetID]
	if !ok || !target.Active() {
		return reject(CodeCellUnavailable, "target is not in the game")
	}
	board := s.st.Boards[cmd.TargetID]
	if board == nil {
		return reject(CodeCellUnavailable, "target has no board")
	}
	if !board.InBounds(cmd.At) {
		return reject(CodeCellUnavailable, "cell is off the board")
	}
	if board.Attacked(cmd.At) {
		return reject(CodeAlreadyAttacked, "that cell was already attacked")
	}

	s.hasAttacked = true
	result := AttackMiss
	patch := state.CombatPatch{PlayerID: cmd.TargetID}
	if ship, hit := board.ShipAt(cmd.At); hit {
		board.Hits[cmd.At] = true
		patch.Hits = []state.Coord{cmd.At}
		result = AttackHit
		if board.Sunk(ship) {
			result = AttackSunk
		}
		if board.AllSunk() {
			result = AttackEliminated
		}
	} else {
		board.Misses[cmd.At] = true
		patch.Misses = []state.Coord{cmd.At}
	}
	s.patchCombat(patch)
	s.emit(AttackResolved{AttackerID: attackerID, TargetID: cmd.TargetID, Cell: cmd.At, Result: result})

	if result == AttackEliminated {
		m.eliminate(target)
	}
	return nil
}

// eliminate removes a player whose fleet is gone from turn rotation.
func (m *combatModule) eliminate(p *state.PlayerRecord) {
	s := m.s
	if p.Eliminated {
		return
	}
	p.Eliminated = true
	s.patchPlayer(state.PlayerPatch{ID: p.ID, Eliminated: state.BoolPtr(true)})
	s.releaseProperties(p.ID)
	s.dropFromTrade(p.ID)
	s.emit(PlayerEliminated{PlayerID: p.ID})
	s.emit(GameMessage{Text: p.Name + "'s fleet is destroyed"})
	s.checkLastActive()
}
