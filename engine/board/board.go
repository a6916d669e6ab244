// Package board holds the static shared-board layout and the card deck
// definitions. The layout ships embedded in the binary; sessions treat it
// as read-only.
package board

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Cell kinds.
const (
	KindStart       = "start"
	KindProperty    = "property"
	KindRail        = "rail"
	KindUtility     = "utility"
	KindTax         = "tax"
	KindChance      = "chance"
	KindChest       = "chest"
	KindJail        = "jail"
	KindGoToJail    = "go-to-jail"
	KindFreeParking = "free-parking"
)

// MaxHouses is the house count a cell can carry before the next build must
// be a hotel.
const MaxHouses = 4

// Cell is one tile of the shared board.
type Cell struct {
	ID        string `json:"id"`
	Position  int    `json:"position"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Group     string `json:"group"`
	Price     int    `json:"price"`
	BaseRent  int    `json:"rent"`
	RentTable []int  `json:"rent_table"` // 1-4 houses then hotel
	HouseCost int    `json:"house_cost"`
	Amount    int    `json:"amount"` // tax cells
}

// Ownable reports whether the cell can be purchased.
func (c Cell) Ownable() bool {
	return c.Kind == KindProperty || c.Kind == KindRail || c.Kind == KindUtility
}

// Buildable reports whether houses can ever be built on the cell.
func (c Cell) Buildable() bool {
	return c.Kind == KindProperty && len(c.RentTable) == MaxHouses+1
}

// Layout is the full shared board plus derived indexes.
type Layout struct {
	cells  []Cell
	byPos  map[int]Cell
	byID   map[string]Cell
	groups map[string][]string
}

//go:embed properties.json
var propertiesJSON []byte

var errNotFound = errors.New("cell not found")

// Load parses the embedded layout. It is called once per process; the
// result is shared by every session.
func Load() (*Layout, error) {
	return parse(propertiesJSON)
}

func parse(data []byte) (*Layout, error) {
	var cells []Cell
	if err := json.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("board layout: %w", err)
	}
	l := &Layout{
		cells:  cells,
		byPos:  make(map[int]Cell, len(cells)),
		byID:   make(map[string]Cell, len(cells)),
		groups: make(map[string][]string),
	}
	for _, c := range cells {
		if _, dup := l.byPos[c.Position]; dup {
			return nil, fmt.Errorf("board layout: duplicate position %d", c.Position)
		}
		if _, dup := l.byID[c.ID]; dup {
			return nil, fmt.Errorf("board layout: duplicate id %q", c.ID)
		}
		l.byPos[c.Position] = c
		l.byID[c.ID] = c
		if c.Kind == KindProperty && c.Group != "" {
			l.groups[c.Group] = append(l.groups[c.Group], c.ID)
		}
	}
	for _, ids := range l.groups {
		sort.Strings(ids)
	}
	return l, nil
}

// Size is the number of cells on the board.
func (l *Layout) Size() int { return len(l.cells) }

// Cells returns the layout in board order.
func (l *Layout) Cells() []Cell {
	out := make([]Cell, len(l.cells))
	copy(out, l.cells)
	return out
}

// ByPosition finds the cell at a board position.
func (l *Layout) ByPosition(pos int) (Cell, error) {
	c, ok := l.byPos[pos]
	if !ok {
		return Cell{}, fmt.Errorf("%w: position %d", errNotFound, pos)
	}
	return c, nil
}

// ByID finds a cell by its stable id.
func (l *Layout) ByID(id string) (Cell, error) {
	c, ok := l.byID[id]
	if !ok {
		return Cell{}, fmt.Errorf("%w: %q", errNotFound, id)
	}
	return c, nil
}

// Group returns the cell ids of a color group, sorted.
func (l *Layout) Group(group string) []string {
	ids := l.groups[group]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// JailPosition returns the position of the jail cell.
func (l *Layout) JailPosition() int {
	for _, c := range l.cells {
		if c.Kind == KindJail {
			return c.Position
		}
	}
	return 0
}

// NearestOfKind walks forward from pos (exclusive) and returns the first
// cell of the given kind, wrapping past start.
func (l *Layout) NearestOfKind(pos int, kind string) (Cell, error) {
	size := l.Size()
	for i := 1; i <= size; i++ {
		c, ok := l.byPos[(pos+i)%size]
		if ok && c.Kind == kind {
			return c, nil
		}
	}
	return Cell{}, fmt.Errorf("%w: no %s cell", errNotFound, kind)
}
