package engine

import (
	"errors"
	"testing"

	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// TestPurchaseOnLanding covers the basic buy: land on an unowned $60
// property with $1500 and purchase it.
func TestPurchaseOnLanding(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")

	s.st.Players["p1"].Position = 1 // dock-row, $60
	events, err := s.HandleCommand("p1", PurchaseProperty{})
	if err != nil {
		t.Fatalf("purchase returned error: %v", err)
	}

	p, _ := s.st.Player("p1")
	if p.Money != 1440 {
		t.Fatalf("money %d after purchase, want 1440", p.Money)
	}
	own, ok := s.st.Owner("dock-row")
	if !ok || own.OwnerID != "p1" {
		t.Fatalf("ownership not recorded: %+v", own)
	}
	if !hasEvent(events, "property-purchased") {
		t.Fatal("no property-purchased event")
	}
	d := lastDelta(t, events)
	if len(d.Cells) == 0 || d.Cells[0].CellID != "dock-row" {
		t.Fatalf("delta missing cell patch: %+v", d)
	}
}

func TestPurchaseRejections(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")

	// Not the turn holder.
	s.st.Players["p2"].Position = 1
	if _, err := s.HandleCommand("p2", PurchaseProperty{}); rejectionCode(t, err) != CodeWrongTurn {
		t.Fatalf("wrong-turn purchase: %v", err)
	}

	// Standing on an unownable cell.
	s.st.Players["p1"].Position = 0
	if _, err := s.HandleCommand("p1", PurchaseProperty{}); rejectionCode(t, err) != CodeCellUnavailable {
		t.Fatalf("unownable cell: %v", err)
	}

	// Already owned.
	giveProperty(t, s, "p2", "dock-row")
	s.st.Players["p1"].Position = 1
	if _, err := s.HandleCommand("p1", PurchaseProperty{}); rejectionCode(t, err) != CodeCellUnavailable {
		t.Fatalf("owned cell: %v", err)
	}

	// Insolvent.
	s.st.Players["p1"].Position = 39 // royal-mile, $400
	s.st.Players["p1"].Money = 399
	if _, err := s.HandleCommand("p1", PurchaseProperty{}); rejectionCode(t, err) != CodeInsufficientFunds {
		t.Fatalf("insolvent purchase: %v", err)
	}
}

// TestBuildHouses covers the monopoly gate, the house cap and the hotel
// conversion.
func TestBuildHouses(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")

	// No monopoly yet: two of three lightblue cells.
	giveProperty(t, s, "p1", "mill-street")
	giveProperty(t, s, "p1", "fountain-way")
	if _, err := s.HandleCommand("p1", BuildHouse{CellID: "mill-street"}); rejectionCode(t, err) != CodeNoMonopoly {
		t.Fatalf("build without monopoly: %v", err)
	}

	giveProperty(t, s, "p1", "garden-walk")
	s.st.Players["p1"].Money = 200

	events, err := s.HandleCommand("p1", BuildHouse{CellID: "mill-street"})
	if err != nil {
		t.Fatalf("buildHouse returned error: %v", err)
	}
	own, _ := s.st.Owner("mill-street")
	if own.Houses != 1 {
		t.Fatalf("houses %d, want 1", own.Houses)
	}
	if p, _ := s.st.Player("p1"); p.Money != 150 {
		t.Fatalf("money %d after house, want 150", p.Money)
	}
	if !hasEvent(events, "building-changed") {
		t.Fatal("no building-changed event")
	}

	// Fill to the cap, then a fifth house must be rejected.
	s.st.Players["p1"].Money = 10000
	for i := 0; i < 3; i++ {
		if _, err := s.HandleCommand("p1", BuildHouse{CellID: "mill-street"}); err != nil {
			t.Fatalf("house %d returned error: %v", i+2, err)
		}
	}
	if _, err := s.HandleCommand("p1", BuildHouse{CellID: "mill-street"}); rejectionCode(t, err) != CodeHouseLimit {
		t.Fatalf("fifth house: %v", err)
	}

	// Hotel consumes the four houses atomically.
	if _, err := s.HandleCommand("p1", BuildHotel{CellID: "mill-street"}); err != nil {
		t.Fatalf("buildHotel returned error: %v", err)
	}
	own, _ = s.st.Owner("mill-street")
	if own.Houses != 0 || !own.Hotel {
		t.Fatalf("hotel state %+v, want 0 houses and hotel", own)
	}
	if _, err := s.HandleCommand("p1", BuildHotel{CellID: "mill-street"}); rejectionCode(t, err) != CodeHouseLimit {
		t.Fatalf("second hotel: %v", err)
	}
}

func TestBuildRequiresOwnership(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	giveProperty(t, s, "p2", "mill-street")
	if _, err := s.HandleCommand("p1", BuildHouse{CellID: "mill-street"}); rejectionCode(t, err) != CodeNotOwner {
		t.Fatalf("building on someone else's cell: %v", err)
	}
	if _, err := s.HandleCommand("p1", BuildHouse{CellID: "north-rail"}); rejectionCode(t, err) != CodeCellUnavailable {
		t.Fatalf("building on a rail: %v", err)
	}
}

// TestRentOnLanding checks base rent, monopoly doubling, buildings and
// the mortgage exemption.
func TestRentOnLanding(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	giveProperty(t, s, "p2", "dock-row") // base rent 2

	p1 := s.st.Players["p1"]
	p1.Position = 0
	s.lastRoll = 1
	s.begin()
	s.mods.Movement.moveBy(p1, 1)
	s.finish()
	if p1.Money != 1498 {
		t.Fatalf("money %d after base rent, want 1498", p1.Money)
	}
	if p2, _ := s.st.Player("p2"); p2.Money != 1502 {
		t.Fatalf("owner money %d, want 1502", p2.Money)
	}

	// Monopoly doubles un-built rent.
	giveProperty(t, s, "p2", "harbor-lane")
	p1.Position = 0
	s.begin()
	s.mods.Movement.moveBy(p1, 1)
	s.finish()
	if p1.Money != 1494 {
		t.Fatalf("money %d after monopoly rent, want 1494", p1.Money)
	}

	// Houses switch to the rent table.
	s.st.Ownership["dock-row"].Houses = 2
	p1.Position = 0
	s.begin()
	s.mods.Movement.moveBy(p1, 1)
	s.finish()
	if p1.Money != 1464 {
		t.Fatalf("money %d after 2-house rent, want 1464", p1.Money)
	}

	// Mortgaged cells collect nothing.
	s.st.Ownership["dock-row"].Mortgaged = true
	p1.Position = 0
	s.begin()
	s.mods.Movement.moveBy(p1, 1)
	s.finish()
	if p1.Money != 1464 {
		t.Fatalf("money %d after mortgaged landing, want unchanged 1464", p1.Money)
	}
}

func TestRailAndUtilityRent(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	giveProperty(t, s, "p2", "north-rail")
	giveProperty(t, s, "p2", "east-rail")

	cell, _ := s.layout.ByID("north-rail")
	own, _ := s.st.Owner("north-rail")
	if rent := s.mods.Property.rentFor(cell, own); rent != 50 {
		t.Fatalf("two-rail rent %d, want 50", rent)
	}

	giveProperty(t, s, "p2", "power-plant")
	s.lastRoll = 7
	cell, _ = s.layout.ByID("power-plant")
	own, _ = s.st.Owner("power-plant")
	if rent := s.mods.Property.rentFor(cell, own); rent != 28 {
		t.Fatalf("one-utility rent %d, want 28", rent)
	}
	giveProperty(t, s, "p2", "water-works")
	if rent := s.mods.Property.rentFor(cell, own); rent != 70 {
		t.Fatalf("two-utility rent %d, want 70", rent)
	}
}

// TestBankruptcyOnRent drives a player insolvent and checks the
// elimination flow plus the last-solvent game over.
func TestBankruptcyOnRent(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	giveProperty(t, s, "p2", "royal-mile")
	s.st.Ownership["royal-mile"].Hotel = true
	giveProperty(t, s, "p1", "dock-row")

	p1 := s.st.Players["p1"]
	p1.Money = 100
	p1.Position = 38
	s.begin()
	s.mods.Movement.moveBy(p1, 1) // hotel rent 2000 on royal-mile
	events := s.finish()

	if !p1.Bankrupt {
		t.Fatal("p1 should be bankrupt")
	}
	if p2, _ := s.st.Player("p2"); p2.Money != 1600 {
		t.Fatalf("creditor got %d, want 1600 (1500 + all 100)", p2.Money)
	}
	if _, stillOwned := s.st.Owner("dock-row"); stillOwned {
		t.Fatal("bankrupt player's property not released")
	}
	if s.st.Phase != state.PhaseGameOver || s.st.Winner != "p2" {
		t.Fatalf("phase %q winner %q, want game over for p2", s.st.Phase, s.st.Winner)
	}
	if !hasEvent(events, "player-eliminated") || !hasEvent(events, "game-over") {
		t.Fatal("missing elimination or game-over event")
	}
}

// TestOwnershipUnique double-checks the single-record invariant across a
// purchase and a trade.
func TestOwnershipUnique(t *testing.T) {
	s := newTestSession(t, rules.ClassicProperty(), "p1", "p2")
	s.st.Players["p1"].Position = 1
	if _, err := s.HandleCommand("p1", PurchaseProperty{}); err != nil {
		t.Fatalf("purchase returned error: %v", err)
	}
	seen := map[string]int{}
	for id, own := range s.st.Ownership {
		if id != own.CellID {
			t.Fatalf("ownership key %q does not match record %q", id, own.CellID)
		}
		seen[own.CellID]++
	}
	for cell, n := range seen {
		if n != 1 {
			t.Fatalf("cell %s has %d ownership records", cell, n)
		}
	}

	// Granting an already-owned cell is a consistency violation, not a
	// rejection.
	s.begin()
	err := s.mods.Property.grantOwnership("dock-row", "p2")
	s.finish()
	if !errors.Is(err, ErrDuplicateOwnership) {
		t.Fatalf("duplicate grant returned %v, want ErrDuplicateOwnership", err)
	}
	if own, _ := s.st.Owner("dock-row"); own.OwnerID != "p1" {
		t.Fatalf("duplicate grant changed owner to %q", own.OwnerID)
	}
}
