// Package draft holds the in-progress budget of one school year. All changes
// go through named mutation methods; readers take snapshots.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/wire"
)

var (
	// ErrUnknownGroup is returned for a group name other than OPEX or CAPEX.
	ErrUnknownGroup = errors.New("draft: group must be OPEX or CAPEX")
	// ErrNotFound is returned when an id does not match any node.
	ErrNotFound = errors.New("draft: node not found")
	// ErrNegative is returned for negative costs, quantities or amounts.
	ErrNegative = errors.New("draft: amounts must not be negative")
	// ErrNotFinite is returned for NaN or infinite costs, quantities or amounts.
	ErrNotFinite = errors.New("draft: amounts must be finite numbers")
)

func checkAmounts(vs ...float64) error {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNotFinite
		}
		if v < 0 {
			return ErrNegative
		}
	}
	return nil
}

func newID() string {
	return ulid.Make().String()
}

// Snapshot is an immutable copy of the draft contents.
type Snapshot struct {
	SchoolCode string            `json:"schoolCode"`
	Year       int               `json:"year"`
	Meta       model.MetaInfo    `json:"meta"`
	Budget     model.BudgetTree  `json:"budget"`
	Revenue    model.RevenueTree `json:"revenue"`
}

// Draft is the single source of truth for the budget being edited.
type Draft struct {
	mu      sync.RWMutex
	code    string
	year    int
	meta    model.MetaInfo
	budget  model.BudgetTree
	revenue model.RevenueTree
	version uint64
}

// New returns an empty draft for a school and budget year.
func New(code string, year int) *Draft {
	return &Draft{code: code, year: year, meta: model.MetaInfo{SchoolCode: code}}
}

// FromSnapshot restores a draft, assigning ids to nodes that lack one.
func FromSnapshot(s Snapshot) *Draft {
	d := New(s.SchoolCode, s.Year)
	d.Hydrate(s.Meta, s.Budget, s.Revenue)
	return d
}

// Version increments on every mutation; views use it to detect changes.
func (d *Draft) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns a deep copy of the draft.
func (d *Draft) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := Snapshot{
		SchoolCode: d.code,
		Year:       d.year,
		Meta:       d.meta,
		Budget:     d.budget,
		Revenue:    d.revenue,
	}
	return deepCopy(s)
}

// deepCopy clones through JSON; the trees are small and contain only plain data.
func deepCopy(s Snapshot) Snapshot {
	data, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("draft: copying snapshot: %v", err))
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("draft: copying snapshot: %v", err))
	}
	return out
}

// Payload converts the draft to the API schema.
func (d *Draft) Payload() wire.Payload {
	s := d.Snapshot()
	return wire.Build(s.SchoolCode, s.Year, s.Meta, s.Budget, s.Revenue)
}

// SetMeta replaces the meta-information section.
func (d *Draft) SetMeta(m model.MetaInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m.SchoolCode == "" {
		m.SchoolCode = d.code
	}
	d.meta = m
	d.version++
}

// Hydrate replaces the whole draft, as when loading a budget for editing.
func (d *Draft) Hydrate(meta model.MetaInfo, budget model.BudgetTree, revenue model.RevenueTree) {
	s := deepCopy(Snapshot{Meta: meta, Budget: budget, Revenue: revenue})
	assignBudgetIDs(s.Budget)
	assignRevenueIDs(s.Revenue)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.meta = s.Meta
	if d.meta.SchoolCode == "" {
		d.meta.SchoolCode = d.code
	}
	d.budget = s.Budget
	d.revenue = s.Revenue
	d.version++
}

// Reset empties the draft, keeping the school and year.
func (d *Draft) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.meta = model.MetaInfo{SchoolCode: d.code}
	d.budget = nil
	d.revenue = nil
	d.version++
}

// Empty reports whether the draft has no budget or revenue lines.
func (d *Draft) Empty() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.budget) == 0 && len(d.revenue) == 0
}

func assignBudgetIDs(tree model.BudgetTree) {
	for gi := range tree {
		g := &tree[gi]
		if g.ID == "" {
			g.ID = newID()
		}
		for ci := range g.Categories {
			c := &g.Categories[ci]
			if c.ID == "" {
				c.ID = newID()
			}
			for ii := range c.Items {
				if c.Items[ii].ID == "" {
					c.Items[ii].ID = newID()
				}
			}
		}
	}
}

func assignRevenueIDs(tree model.RevenueTree) {
	for gi := range tree {
		g := &tree[gi]
		if g.ID == "" {
			g.ID = newID()
		}
		for ci := range g.Categories {
			c := &g.Categories[ci]
			if c.ID == "" {
				c.ID = newID()
			}
			for ii := range c.Items {
				if c.Items[ii].ID == "" {
					c.Items[ii].ID = newID()
				}
			}
		}
	}
}

// lineTotal recomputes unitCost * quantity in decimal arithmetic, rounded to cents.
func lineTotal(unitCost, quantity float64) float64 {
	return decimal.NewFromFloat(unitCost).Mul(decimal.NewFromFloat(quantity)).Round(2).InexactFloat64()
}
