package engine

import (
	"testing"

	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// newTestSession builds, seats and starts a session with a fixed seed.
func newTestSession(t *testing.T, cfg rules.Config, players ...string) *Session {
	t.Helper()
	s, err := NewSession("test-game", cfg, 1, nil)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	for _, id := range players {
		if err := s.AddPlayer(id, "player-"+id); err != nil {
			t.Fatalf("AddPlayer(%s) returned error: %v", id, err)
		}
	}
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return s
}

// placeFleet places one player's whole fleet deterministically: each
// ship on its own row, flush left.
func placeFleet(t *testing.T, s *Session, playerID string) {
	t.Helper()
	row := 0
	for _, spec := range s.cfg.Ships {
		for n := 0; n < spec.Count; n++ {
			_, err := s.HandleCommand(playerID, PlaceShip{
				Ship:       spec.Name,
				At:         state.Coord{Row: row, Col: 0},
				Horizontal: true,
			})
			if err != nil {
				t.Fatalf("placing %s for %s: %v", spec.Name, playerID, err)
			}
			row++
		}
	}
}

// placeAllShips walks every player through placeFleet.
func placeAllShips(t *testing.T, s *Session) {
	t.Helper()
	for _, id := range s.st.Order {
		placeFleet(t, s, id)
	}
	if s.st.Phase != state.PhaseInProgress {
		t.Fatalf("phase %q after all placements, want in-progress", s.st.Phase)
	}
}

// endTurnOf marks the turn spent and yields it, bypassing dice noise.
func endTurnOf(t *testing.T, s *Session, playerID string) []Event {
	t.Helper()
	s.hasRolled = true
	s.hasAttacked = true
	events, err := s.HandleCommand(playerID, EndTurn{})
	if err != nil {
		t.Fatalf("EndTurn(%s) returned error: %v", playerID, err)
	}
	return events
}

// giveProperty hands a cell to a player directly, for scenario setup.
func giveProperty(t *testing.T, s *Session, playerID, cellID string) {
	t.Helper()
	if _, err := s.layout.ByID(cellID); err != nil {
		t.Fatalf("unknown cell %q", cellID)
	}
	s.st.Ownership[cellID] = &state.CellOwnership{CellID: cellID, OwnerID: playerID}
}

func rejectionCode(t *testing.T, err error) string {
	t.Helper()
	rej, ok := AsRejection(err)
	if !ok {
		t.Fatalf("expected a rejection, got %v", err)
	}
	return rej.Code
}

// lastDelta extracts the state delta a command emitted.
func lastDelta(t *testing.T, events []Event) state.Delta {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if d, ok := events[i].(StateDelta); ok {
			return d.Delta
		}
	}
	t.Fatal("no state delta emitted")
	return state.Delta{}
}

func hasEvent(events []Event, name string) bool {
	for _, ev := range events {
		if ev.EventName() == name {
			return true
		}
	}
	return false
}
