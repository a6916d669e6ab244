package state

import (
	"errors"
	"testing"
)

func TestMirrorFieldwiseOverwrite(t *testing.T) {
	m := NewMirror()
	err := m.Apply(Delta{
		Seq: 1,
		Players: []PlayerPatch{{
			ID:       "p1",
			Name:     StrPtr("ada"),
			Position: IntPtr(3),
			Money:    IntPtr(1500),
		}},
	})
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	// A later patch touching only money must keep the other fields.
	if err := m.Apply(Delta{
		Seq:     2,
		Players: []PlayerPatch{{ID: "p1", Money: IntPtr(1440)}},
	}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	p := m.Players["p1"]
	if p.Money != 1440 {
		t.Fatalf("money %d, want 1440", p.Money)
	}
	if p.Position != 3 || p.Name != "ada" {
		t.Fatalf("untouched fields lost: %+v", p)
	}
}

func TestMirrorRejectsGaps(t *testing.T) {
	m := NewMirror()
	if err := m.Apply(Delta{Seq: 2}); !errors.Is(err, ErrDeltaGap) {
		t.Fatalf("expected ErrDeltaGap, got %v", err)
	}
	if err := m.Apply(Delta{Seq: 1}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := m.Apply(Delta{Seq: 1}); !errors.Is(err, ErrDeltaGap) {
		t.Fatalf("replayed delta accepted: %v", err)
	}
}

func TestMirrorCellClear(t *testing.T) {
	m := NewMirror()
	own := CellOwnership{CellID: "dock-row", OwnerID: "p1"}
	if err := m.Apply(Delta{Seq: 1, Cells: []CellPatch{OwnershipPatch(own)}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got := m.Ownership["dock-row"]; got.OwnerID != "p1" {
		t.Fatalf("ownership not applied: %+v", got)
	}
	if err := m.Apply(Delta{Seq: 2, Cells: []CellPatch{{CellID: "dock-row", Cleared: true}}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if _, ok := m.Ownership["dock-row"]; ok {
		t.Fatal("cleared ownership survived")
	}
}

func TestMirrorTradeLifecycle(t *testing.T) {
	m := NewMirror()
	prop := &TradeProposal{ProposerID: "p1", TargetID: "p2", Active: true}
	if err := m.Apply(Delta{Seq: 1, Trade: &TradePatch{Proposal: prop}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if m.Trade == nil || !m.Trade.Active {
		t.Fatal("trade not mirrored")
	}
	if err := m.Apply(Delta{Seq: 2, Trade: &TradePatch{Proposal: nil}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if m.Trade != nil {
		t.Fatal("resolved trade still mirrored")
	}
}

func TestMirrorCombatAccumulates(t *testing.T) {
	m := NewMirror()
	if err := m.Apply(Delta{Seq: 1, Combat: []CombatPatch{{
		PlayerID: "p2",
		Hits:     []Coord{{Row: 1, Col: 1}},
	}}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if err := m.Apply(Delta{Seq: 2, Combat: []CombatPatch{{
		PlayerID: "p2",
		Misses:   []Coord{{Row: 0, Col: 0}},
	}}}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	b := m.Boards["p2"]
	if !b.Hits[Coord{Row: 1, Col: 1}] || !b.Misses[Coord{Row: 0, Col: 0}] {
		t.Fatalf("attack record lost: %+v", b)
	}
}

func TestDeckDrawWraps(t *testing.T) {
	d := DeckState{Order: []int{2, 0, 1}}
	got := []int{d.Draw(), d.Draw(), d.Draw(), d.Draw()}
	want := []int{2, 0, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw sequence %v, want %v", got, want)
		}
	}
}
