package engine

import (
	"fmt"

	"github.com/hybridboard/gametable-backend/engine/board"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// propertyModule owns cell purchases, buildings, and rent. It consults
// the currency module for every payment but never assumes combat exists.
type propertyModule struct {
	s *Session
}

// landed charges rent when the cell belongs to someone else. Unowned
// cells wait for an explicit purchase command.
func (m *propertyModule) landed(p *state.PlayerRecord, cell board.Cell) {
	s := m.s
	own, ok := s.st.Owner(cell.ID)
	if !ok || own.OwnerID == p.ID {
		return
	}
	owner := s.st.Players[own.OwnerID]
	if owner == nil || !owner.Active() {
		return
	}
	rent := m.rentFor(cell, own)
	if rent <= 0 || s.mods.Currency == nil {
		return
	}
	s.emit(GameMessage{Text: p.Name + " pays rent on " + cell.Name})
	s.mods.Currency.charge(p.ID, rent, own.OwnerID)
}

// rentFor computes the rent of a cell given its ownership record.
// Mortgaged cells collect nothing; un-built monopolies double base rent;
// houses and hotels use the per-cell rent table; rails scale with the
// count held and utilities multiply the landing throw.
func (m *propertyModule) rentFor(cell board.Cell, own state.CellOwnership) int {
	if own.Mortgaged {
		return 0
	}
	switch cell.Kind {
	case board.KindRail:
		rent := cell.BaseRent
		for i := 1; i < m.countOfKind(own.OwnerID, board.KindRail); i++ {
			rent *= 2
		}
		return rent
	case board.KindUtility:
		mult := cell.BaseRent
		if m.countOfKind(own.OwnerID, board.KindUtility) > 1 {
			mult = 10
		}
		return mult * m.s.lastRoll
	}
	if own.Hotel {
		return cell.RentTable[board.MaxHouses]
	}
	if own.Houses > 0 {
		return cell.RentTable[own.Houses-1]
	}
	if m.ownsGroup(own.OwnerID, cell.Group) {
		return cell.BaseRent * 2
	}
	return cell.BaseRent
}

func (m *propertyModule) countOfKind(playerID, kind string) int {
	n := 0
	for _, cellID := range m.s.st.PropertiesOf(playerID) {
		if c, err := m.s.layout.ByID(cellID); err == nil && c.Kind == kind {
			n++
		}
	}
	return n
}

// ownsGroup reports whether the player holds every cell of a color group.
func (m *propertyModule) ownsGroup(playerID, group string) bool {
	ids := m.s.layout.Group(group)
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		own, ok := m.s.st.Owner(id)
		if !ok || own.OwnerID != playerID {
			return false
		}
	}
	return true
}

// purchase buys the unowned cell the player is standing on.
func (m *propertyModule) purchase(playerID string) error {
	s := m.s
	if !s.cfg.PropertyEnabled {
		return reject(CodeRuleDisabled, "purchasing is not active")
	}
	p := s.st.Players[playerID]
	cell, err := s.layout.ByPosition(p.Position)
	if err != nil || !cell.Ownable() {
		return reject(CodeCellUnavailable, "this cell cannot be purchased")
	}
	if _, owned := s.st.Owner(cell.ID); owned {
		return reject(CodeCellUnavailable, "%s is already owned", cell.Name)
	}
	if !s.mods.Currency.canAfford(playerID, cell.Price) {
		return reject(CodeInsufficientFunds, "cannot afford %s", cell.Name)
	}
	s.mods.Currency.debit(playerID, cell.Price)
	if err := m.grantOwnership(cell.ID, playerID); err != nil {
		return err
	}
	s.emit(PropertyPurchased{PlayerID: playerID, CellID: cell.ID})
	return nil
}

// grantOwnership inserts a fresh ownership record. Every grant path
// checks availability first, so an existing record here is a consistency
// violation, not a rejection: the caller's session aborts on it.
func (m *propertyModule) grantOwnership(cellID, playerID string) error {
	if _, exists := m.s.st.Ownership[cellID]; exists {
		return fmt.Errorf("%w: cell %s", ErrDuplicateOwnership, cellID)
	}
	own := &state.CellOwnership{CellID: cellID, OwnerID: playerID}
	m.s.st.Ownership[cellID] = own
	m.s.patchCell(state.OwnershipPatch(*own))
	return nil
}

// buildHouse adds one house. Requires the full color group, a house count
// below the cap, and funds for the per-cell house cost.
func (m *propertyModule) buildHouse(playerID, cellID string) error {
	s := m.s
	cell, own, err := m.buildTarget(playerID, cellID)
	if err != nil {
		return err
	}
	if own.Hotel || own.Houses >= board.MaxHouses {
		return reject(CodeHouseLimit, "%s cannot take another house", cell.Name)
	}
	if !s.mods.Currency.canAfford(playerID, cell.HouseCost) {
		return reject(CodeInsufficientFunds, "cannot afford a house on %s", cell.Name)
	}
	s.mods.Currency.debit(playerID, cell.HouseCost)
	own.Houses++
	s.patchCell(state.CellPatch{CellID: cell.ID, Houses: state.IntPtr(own.Houses)})
	s.emit(BuildingChanged{CellID: cell.ID, Houses: own.Houses, Hotel: own.Hotel})
	return nil
}

// buildHotel converts the four-house state into a hotel atomically; the
// two are never observable together.
func (m *propertyModule) buildHotel(playerID, cellID string) error {
	s := m.s
	cell, own, err := m.buildTarget(playerID, cellID)
	if err != nil {
		return err
	}
	if own.Hotel {
		return reject(CodeHouseLimit, "%s already has a hotel", cell.Name)
	}
	if own.Houses != board.MaxHouses {
		return reject(CodeHouseLimit, "a hotel needs %d houses first", board.MaxHouses)
	}
	if !s.mods.Currency.canAfford(playerID, cell.HouseCost) {
		return reject(CodeInsufficientFunds, "cannot afford a hotel on %s", cell.Name)
	}
	s.mods.Currency.debit(playerID, cell.HouseCost)
	own.Houses = 0
	own.Hotel = true
	s.patchCell(state.CellPatch{
		CellID: cell.ID,
		Houses: state.IntPtr(0),
		Hotel:  state.BoolPtr(true),
	})
	s.emit(BuildingChanged{CellID: cell.ID, Houses: 0, Hotel: true})
	return nil
}

// buildTarget runs the checks shared by both build commands.
func (m *propertyModule) buildTarget(playerID, cellID string) (board.Cell, *state.CellOwnership, error) {
	s := m.s
	if !s.cfg.PropertyEnabled {
		return board.Cell{}, nil, reject(CodeRuleDisabled, "building is not active")
	}
	cell, err := s.layout.ByID(cellID)
	if err != nil {
		return board.Cell{}, nil, reject(CodeCellUnavailable, "unknown cell %q", cellID)
	}
	if !cell.Buildable() {
		return board.Cell{}, nil, reject(CodeCellUnavailable, "%s cannot carry buildings", cell.Name)
	}
	own, ok := s.st.Ownership[cell.ID]
	if !ok || own.OwnerID != playerID {
		return board.Cell{}, nil, reject(CodeNotOwner, "%s is not yours", cell.Name)
	}
	if own.Mortgaged {
		return board.Cell{}, nil, reject(CodeCellUnavailable, "%s is mortgaged", cell.Name)
	}
	if !m.ownsGroup(playerID, cell.Group) {
		return board.Cell{}, nil, reject(CodeNoMonopoly, "you need the whole %s group", cell.Group)
	}
	return cell, own, nil
}

// buildingCount totals a player's houses and hotels, for repair cards.
func (m *propertyModule) buildingCount(playerID string) (houses, hotels int) {
	for _, cellID := range m.s.st.PropertiesOf(playerID) {
		if own, ok := m.s.st.Owner(cellID); ok {
			houses += own.Houses
			if own.Hotel {
				hotels++
			}
		}
	}
	return houses, hotels
}
