package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowCategory
	rowItem
	rowNeeded
)

// row is one line of the revenue or budget tree as displayed.
type row struct {
	kind  rowKind
	id    string // node id; for needed items, the owning budget item
	index int    // needed-item index
	group string
	label string
	code  string

	amount   float64 // revenue amount, or needed-item total cost
	unitCost float64
	quantity float64
}

func revenueRows(tree model.RevenueTree) []row {
	var rows []row
	for _, g := range tree {
		rows = append(rows, row{kind: rowGroup, id: g.ID, group: g.GroupName, label: g.GroupName})
		for _, c := range g.Categories {
			rows = append(rows, row{kind: rowCategory, id: c.ID, group: g.GroupName, label: c.CategoryName, code: c.CategoryCode})
			for _, it := range c.Items {
				rows = append(rows, row{
					kind:   rowItem,
					id:     it.ID,
					group:  g.GroupName,
					label:  it.Description,
					code:   it.BudgetCode,
					amount: it.Amount,
				})
			}
		}
	}
	return rows
}

func budgetRows(tree model.BudgetTree) []row {
	var rows []row
	for _, g := range tree {
		rows = append(rows, row{kind: rowGroup, id: g.ID, group: g.GroupName, label: g.GroupName})
		for _, c := range g.Categories {
			rows = append(rows, row{kind: rowCategory, id: c.ID, group: g.GroupName, label: c.CategoryName, code: c.CategoryCode})
			for _, it := range c.Items {
				var total float64
				for _, n := range it.NeededItems {
					total += n.TotalCost
				}
				rows = append(rows, row{kind: rowItem, id: it.ID, group: g.GroupName, label: it.Description, code: it.BudgetCode, amount: total})
				for i, n := range it.NeededItems {
					rows = append(rows, row{
						kind:     rowNeeded,
						id:       it.ID,
						index:    i,
						group:    g.GroupName,
						label:    n.Name,
						amount:   n.TotalCost,
						unitCost: n.UnitCost,
						quantity: n.Quantity,
					})
				}
			}
		}
	}
	return rows
}

// listState is the cursor of a scrollable list.
type listState struct {
	cursor int
	offset int
}

func (l *listState) clamp(n int) {
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listState) move(delta, n int) {
	l.cursor += delta
	l.clamp(n)
}

func (l *listState) setCursor(i, n int) {
	l.cursor = i
	l.clamp(n)
}

// window returns the [start, end) slice of n rows that fits height h and
// keeps the cursor visible.
func (l *listState) window(n, h int) (int, int) {
	h = max(h, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+h {
		l.offset = l.cursor - h + 1
	}
	l.offset = max(0, min(l.offset, n-h))
	return l.offset, min(n, l.offset+h)
}

func (a *App) listFor(tab int) *listState {
	switch tab {
	case 1:
		return &a.revList
	case 2:
		return &a.budList
	}
	a.idle = listState{}
	return &a.idle
}

func (a App) rowsFor(tab int) []row {
	switch tab {
	case 1:
		return revenueRows(a.snap.Revenue)
	case 2:
		return budgetRows(a.snap.Budget)
	}
	return nil
}

func (a App) rowCount(tab int) int {
	return len(a.rowsFor(tab))
}

func (a App) selectedRow() (row, bool) {
	rows := a.rowsFor(a.activeTab)
	l := a.listFor(a.activeTab)
	if l.cursor < 0 || l.cursor >= len(rows) {
		return row{}, false
	}
	return rows[l.cursor], true
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a App) startEdit() (tea.Model, tea.Cmd) {
	r, ok := a.selectedRow()
	if !ok {
		return a, nil
	}

	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 30
	switch {
	case a.activeTab == 1 && r.kind == rowItem:
		ti.Placeholder = "amount"
		ti.SetValue(formatNum(r.amount))
	case a.activeTab == 2 && r.kind == rowNeeded:
		ti.Placeholder = "unit cost x quantity"
		ti.SetValue(formatNum(r.unitCost) + " x " + formatNum(r.quantity))
	default:
		return a, a.flash("Select a revenue line or a needed item to edit", false)
	}
	ti.Focus()

	a.editing = true
	a.editRow = r
	a.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateEditInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.editing = false
		return a, nil
	case "enter":
		a.editing = false
		if err := a.applyEdit(strings.TrimSpace(a.input.Value())); err != nil {
			return a, a.flash(err.Error(), true)
		}
		a.recompute()
		a.persist()
		return a, a.flash("Saved", false)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) applyEdit(value string) error {
	r := a.editRow
	if r.kind == rowItem {
		amount, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		return a.opts.Draft.UpdateRevenueAmount(r.id, amount)
	}

	cost, qty, err := draft.ParseCostQuantity(value)
	if err != nil {
		return err
	}
	return a.opts.Draft.UpdateNeededItem(r.id, r.index, cost, qty)
}

func (a App) deleteSelected() (tea.Model, tea.Cmd) {
	r, ok := a.selectedRow()
	if !ok {
		return a, nil
	}
	if r.kind == rowNeeded {
		return a, a.flash("Delete the whole line, or edit its cost", false)
	}

	var err error
	if a.activeTab == 1 {
		err = a.opts.Draft.RemoveRevenueItem(r.id)
	} else {
		err = a.opts.Draft.RemoveBudgetItem(r.id)
	}
	if err != nil {
		return a, a.flash(err.Error(), true)
	}
	a.recompute()
	a.persist()
	label := r.label
	if label == "" {
		label = "line"
	}
	return a, a.flash("Removed "+label, false)
}
