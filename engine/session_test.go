package engine

import (
	"testing"

	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/engine/state"
)

func TestSeatingLifecycle(t *testing.T) {
	s, err := NewSession("g1", rules.ClassicProperty(), 1, nil)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	if err := s.AddPlayer("p1", "Alice"); err != nil {
		t.Fatalf("AddPlayer returned error: %v", err)
	}
	if err := s.AddPlayer("p1", "Alice again"); err == nil {
		t.Fatal("duplicate seat accepted")
	}
	if _, err := s.Start(); rejectionCode(t, err) != CodeWrongPhase {
		t.Fatalf("start with one player: %v", err)
	}
	if err := s.AddPlayer("p2", "Bob"); err != nil {
		t.Fatalf("AddPlayer returned error: %v", err)
	}
	if err := s.AddPlayer("p3", "Carol"); err != nil {
		t.Fatalf("AddPlayer returned error: %v", err)
	}

	// Unseating renumbers the remaining seats.
	if err := s.RemovePlayer("p2"); err != nil {
		t.Fatalf("RemovePlayer returned error: %v", err)
	}
	if got := s.st.Players["p3"].Seat; got != 1 {
		t.Fatalf("p3 seat %d after removal, want 1", got)
	}

	if _, err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := s.AddPlayer("p4", "Dave"); rejectionCode(t, err) != CodeWrongPhase {
		t.Fatalf("join after start: %v", err)
	}
	if err := s.RemovePlayer("p3"); rejectionCode(t, err) != CodeWrongPhase {
		t.Fatalf("unseat after start: %v", err)
	}
}

func TestSessionCapacity(t *testing.T) {
	cfg := rules.ClassicProperty()
	cfg.MaxPlayers = 2
	s, err := NewSession("g1", cfg, 1, nil)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := s.AddPlayer(id, id); err != nil {
			t.Fatalf("AddPlayer(%s) returned error: %v", id, err)
		}
	}
	if err := s.AddPlayer("p3", "p3"); err == nil {
		t.Fatal("over-capacity seat accepted")
	}
}

func TestCommandsOutsidePlayRejected(t *testing.T) {
	s, err := NewSession("g1", rules.ClassicProperty(), 1, nil)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	if err := s.AddPlayer("p1", "p1"); err != nil {
		t.Fatalf("AddPlayer returned error: %v", err)
	}
	if err := s.AddPlayer("p2", "p2"); err != nil {
		t.Fatalf("AddPlayer returned error: %v", err)
	}
	if _, err := s.HandleCommand("p1", RollDice{}); rejectionCode(t, err) != CodeWrongPhase {
		t.Fatalf("command before start: %v", err)
	}
	if _, err := s.Start(); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if _, err := s.HandleCommand("ghost", RollDice{}); rejectionCode(t, err) != CodeUnknownPlayer {
		t.Fatalf("command from stranger: %v", err)
	}
	if _, err := s.HandleCommand("p2", RollDice{}); rejectionCode(t, err) != CodeWrongTurn {
		t.Fatalf("off-turn roll: %v", err)
	}

	s.gameOver("p1")
	if _, err := s.HandleCommand("p1", RollDice{}); rejectionCode(t, err) != CodeWrongPhase {
		t.Fatalf("command after game over: %v", err)
	}
}

func TestEndTurnRequiresRoll(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	if _, err := s.HandleCommand("p1", EndTurn{}); rejectionCode(t, err) != CodeMustRoll {
		t.Fatalf("end turn before rolling: %v", err)
	}
	s.hasRolled = true
	if _, err := s.HandleCommand("p1", EndTurn{}); err != nil {
		t.Fatalf("end turn after rolling: %v", err)
	}
	if s.st.CurrentPlayer() != "p2" {
		t.Fatalf("turn holder %q, want p2", s.st.CurrentPlayer())
	}
}

func TestRollOncePerTurn(t *testing.T) {
	// A single die never throws doubles, so the roll flag is set
	// deterministically.
	cfg := rules.DiceRace()
	cfg.DiceCount = 1
	s := newTestSession(t, cfg, "p1", "p2")

	events, err := s.HandleCommand("p1", RollDice{})
	if err != nil {
		t.Fatalf("roll returned error: %v", err)
	}
	if !hasEvent(events, "dice-rolled") || !hasEvent(events, "player-moved") {
		t.Fatal("roll events missing")
	}
	if _, err := s.HandleCommand("p1", RollDice{}); rejectionCode(t, err) != CodeAlreadyRolled {
		t.Fatalf("second roll: %v", err)
	}
}

func TestTurnRotationSkipsInactive(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2", "p3")
	s.st.Players["p2"].Bankrupt = true

	endTurnOf(t, s, "p1")
	if s.st.CurrentPlayer() != "p3" {
		t.Fatalf("turn holder %q, want p3 (p2 skipped)", s.st.CurrentPlayer())
	}
	endTurnOf(t, s, "p3")
	if s.st.CurrentPlayer() != "p1" {
		t.Fatalf("turn holder %q, want p1", s.st.CurrentPlayer())
	}
}

func TestAdvanceTurnWithNoEligiblePlayer(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	s.st.Players["p1"].Eliminated = true
	s.st.Players["p2"].Eliminated = true

	s.begin()
	if err := s.advanceTurn(); err != ErrNoEligiblePlayer {
		t.Fatalf("advanceTurn returned %v, want ErrNoEligiblePlayer", err)
	}
}

func TestJailRollRelease(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	p1 := s.st.Players["p1"]

	s.begin()
	s.mods.Movement.sendToJail(p1)
	s.finish()

	// Doubles walk out immediately.
	s.begin()
	if err := s.mods.Movement.jailRoll(p1, 4, true); err != nil {
		t.Fatalf("jailRoll returned error: %v", err)
	}
	s.finish()
	if p1.InJail {
		t.Fatal("doubles should release from jail")
	}
	if p1.Position != (s.layout.JailPosition()+4)%s.layout.Size() {
		t.Fatalf("position %d after release throw", p1.Position)
	}
}

func TestJailRollLimitCollectsFine(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	p1 := s.st.Players["p1"]

	s.begin()
	s.mods.Movement.sendToJail(p1)
	s.finish()

	for i := 0; i < 2; i++ {
		s.begin()
		s.hasRolled = false
		if err := s.mods.Movement.jailRoll(p1, 5, false); err != nil {
			t.Fatalf("jailRoll %d returned error: %v", i, err)
		}
		s.finish()
		if !p1.InJail {
			t.Fatalf("released after %d failed rolls", i+1)
		}
	}

	// Third failure pays the fine and moves anyway.
	s.begin()
	s.hasRolled = false
	if err := s.mods.Movement.jailRoll(p1, 5, false); err != nil {
		t.Fatalf("third jailRoll returned error: %v", err)
	}
	s.finish()
	if p1.InJail {
		t.Fatal("still in jail after the roll limit")
	}
	if p1.Money != 1500-s.cfg.JailFine {
		t.Fatalf("money %d, want fine collected", p1.Money)
	}
}

func TestPayJailFine(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	p1 := s.st.Players["p1"]

	if _, err := s.HandleCommand("p1", PayJailFine{}); rejectionCode(t, err) != CodeNotInJail {
		t.Fatalf("fine outside jail: %v", err)
	}

	s.begin()
	s.mods.Movement.sendToJail(p1)
	s.finish()

	if _, err := s.HandleCommand("p1", PayJailFine{}); err != nil {
		t.Fatalf("pay fine returned error: %v", err)
	}
	if p1.InJail || p1.Money != 1450 {
		t.Fatalf("after fine: InJail=%v money=%d", p1.InJail, p1.Money)
	}
}

func TestMoneyThresholdVictory(t *testing.T) {
	s := newTestSession(t, rules.DiceRace(), "p1", "p2")

	s.begin()
	s.mods.Currency.credit("p1", 999)
	s.finish()
	if s.st.Phase == state.PhaseGameOver {
		t.Fatal("game over below the threshold")
	}

	s.begin()
	s.mods.Currency.credit("p1", 1)
	events := s.finish()
	if s.st.Phase != state.PhaseGameOver || s.st.Winner != "p1" {
		t.Fatalf("phase %q winner %q, want money-threshold victory for p1", s.st.Phase, s.st.Winner)
	}
	if !hasEvent(events, "game-over") {
		t.Fatal("no game-over event")
	}
}

func TestForfeitMidGame(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2", "p3")
	giveProperty(t, s, "p1", "dock-row")

	// The turn holder leaving hands the turn on.
	events, err := s.Forfeit("p1")
	if err != nil {
		t.Fatalf("Forfeit returned error: %v", err)
	}
	if !s.st.Players["p1"].Eliminated {
		t.Fatal("p1 not eliminated")
	}
	if _, owned := s.st.Owner("dock-row"); owned {
		t.Fatal("leaver's property not released")
	}
	if s.st.CurrentPlayer() != "p2" {
		t.Fatalf("turn holder %q, want p2", s.st.CurrentPlayer())
	}
	if !hasEvent(events, "player-eliminated") || !hasEvent(events, "turn-changed") {
		t.Fatal("forfeit events missing")
	}

	// The second leaver leaves one player standing.
	if _, err := s.Forfeit("p3"); err != nil {
		t.Fatalf("Forfeit returned error: %v", err)
	}
	if s.st.Phase != state.PhaseGameOver || s.st.Winner != "p2" {
		t.Fatalf("phase %q winner %q, want p2 by default", s.st.Phase, s.st.Winner)
	}
}

// TestDeltaSequentialNumbering: every mutating command bumps the
// sequence by exactly one, and a client mirror fed those deltas tracks
// the authoritative state.
func TestDeltaSequentialNumbering(t *testing.T) {
	s, err := NewSession("g1", rules.ClassicProperty(), 1, nil)
	if err != nil {
		t.Fatalf("NewSession returned error: %v", err)
	}
	for _, id := range []string{"p1", "p2"} {
		if err := s.AddPlayer(id, id); err != nil {
			t.Fatalf("AddPlayer(%s) returned error: %v", id, err)
		}
	}
	events, err := s.Start()
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	m := state.NewMirror()
	if err := m.Apply(lastDelta(t, events)); err != nil {
		t.Fatalf("start delta rejected: %v", err)
	}

	last := s.st.Seq
	s.st.Players["p1"].Position = 1
	cmds := []struct {
		player string
		cmd    Command
	}{
		{"p1", PurchaseProperty{}},
		{"p1", ProposeTrade{TargetID: "p2", OfferedMoney: 10}},
		{"p2", RespondTrade{Accept: true}},
	}
	for _, c := range cmds {
		events, err := s.HandleCommand(c.player, c.cmd)
		if err != nil {
			t.Fatalf("%T returned error: %v", c.cmd, err)
		}
		d := lastDelta(t, events)
		if d.Seq != last+1 {
			t.Fatalf("delta seq %d, want %d", d.Seq, last+1)
		}
		last = d.Seq
		if err := m.Apply(d); err != nil {
			t.Fatalf("mirror rejected delta %d: %v", d.Seq, err)
		}
	}

	if got := m.Players["p1"].Money; got != 1430 {
		t.Fatalf("mirror money %d, want 1430 after purchase and trade", got)
	}
	if own, ok := m.Ownership["dock-row"]; !ok || own.OwnerID != "p1" {
		t.Fatalf("mirror ownership %+v", m.Ownership["dock-row"])
	}
}

func TestResourceCountersInitialized(t *testing.T) {
	cfg := rules.DiceRace()
	cfg.Resources = []string{"wood", "ore"}
	s := newTestSession(t, cfg, "p1", "p2")

	p1, _ := s.st.Player("p1")
	if len(p1.Resources) != 2 {
		t.Fatalf("resources %v, want wood and ore at zero", p1.Resources)
	}
	for name, v := range p1.Resources {
		if v != 0 {
			t.Fatalf("resource %s starts at %d, want 0", name, v)
		}
	}
}
