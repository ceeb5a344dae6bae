package draft

import (
	"fmt"

	"github.com/theirongolddev/sims/internal/model"
)

// AddBudgetGroup adds an expenditure group and returns its id. Adding a group
// that already exists returns the existing id.
func (d *Draft) AddBudgetGroup(name string) (string, error) {
	if !model.ValidGroup(name) {
		return "", ErrUnknownGroup
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range d.budget {
		if g.GroupName == name {
			return g.ID, nil
		}
	}
	id := newID()
	d.budget = append(d.budget, model.BudgetGroup{ID: id, GroupName: name})
	d.version++
	return id, nil
}

// AddBudgetCategory appends a category to a group.
func (d *Draft) AddBudgetCategory(groupID, name, code string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := d.budgetGroup(groupID)
	if g == nil {
		return "", fmt.Errorf("budget group %s: %w", groupID, ErrNotFound)
	}
	id := newID()
	g.Categories = append(g.Categories, model.BudgetCategory{ID: id, CategoryName: name, CategoryCode: code})
	d.version++
	return id, nil
}

// EnsureBudgetCategory finds or creates the group and a category of that name.
func (d *Draft) EnsureBudgetCategory(group, name, code string) (string, error) {
	gid, err := d.AddBudgetGroup(group)
	if err != nil {
		return "", err
	}
	d.mu.RLock()
	if g := d.budgetGroup(gid); g != nil {
		for _, c := range g.Categories {
			if c.CategoryName == name {
				d.mu.RUnlock()
				return c.ID, nil
			}
		}
	}
	d.mu.RUnlock()
	return d.AddBudgetCategory(gid, name, code)
}

// AddBudgetItem appends a line to a category. Each needed item's totalCost is
// recomputed from unitCost and quantity.
func (d *Draft) AddBudgetItem(categoryID string, item model.BudgetItem) (string, error) {
	needed, err := normalizeNeeded(item.NeededItems)
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.budgetCategory(categoryID)
	if c == nil {
		return "", fmt.Errorf("budget category %s: %w", categoryID, ErrNotFound)
	}
	item.ID = newID()
	item.NeededItems = needed
	c.Items = append(c.Items, item)
	d.version++
	return item.ID, nil
}

// SetNeededItems replaces the needed items of a line.
func (d *Draft) SetNeededItems(itemID string, items []model.NeededItem) error {
	needed, err := normalizeNeeded(items)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	it := d.budgetItem(itemID)
	if it == nil {
		return fmt.Errorf("budget item %s: %w", itemID, ErrNotFound)
	}
	it.NeededItems = needed
	d.version++
	return nil
}

// UpdateNeededItem changes the unit cost and quantity of one needed item and
// recomputes its total.
func (d *Draft) UpdateNeededItem(itemID string, index int, unitCost, quantity float64) error {
	if err := checkAmounts(unitCost, quantity); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	it := d.budgetItem(itemID)
	if it == nil {
		return fmt.Errorf("budget item %s: %w", itemID, ErrNotFound)
	}
	if index < 0 || index >= len(it.NeededItems) {
		return fmt.Errorf("needed item %d of %s: %w", index, itemID, ErrNotFound)
	}
	n := &it.NeededItems[index]
	n.UnitCost = unitCost
	n.Quantity = quantity
	n.TotalCost = lineTotal(unitCost, quantity)
	d.version++
	return nil
}

func normalizeNeeded(items []model.NeededItem) ([]model.NeededItem, error) {
	out := make([]model.NeededItem, 0, len(items))
	for _, n := range items {
		if err := checkAmounts(n.UnitCost, n.Quantity); err != nil {
			return nil, err
		}
		n.TotalCost = lineTotal(n.UnitCost, n.Quantity)
		out = append(out, n)
	}
	return out, nil
}

func (d *Draft) budgetGroup(id string) *model.BudgetGroup {
	for gi := range d.budget {
		if d.budget[gi].ID == id {
			return &d.budget[gi]
		}
	}
	return nil
}

func (d *Draft) budgetCategory(id string) *model.BudgetCategory {
	for gi := range d.budget {
		g := &d.budget[gi]
		for ci := range g.Categories {
			if g.Categories[ci].ID == id {
				return &g.Categories[ci]
			}
		}
	}
	return nil
}

func (d *Draft) budgetItem(id string) *model.BudgetItem {
	for gi := range d.budget {
		g := &d.budget[gi]
		for ci := range g.Categories {
			c := &g.Categories[ci]
			for ii := range c.Items {
				if c.Items[ii].ID == id {
					return &c.Items[ii]
				}
			}
		}
	}
	return nil
}

// Remove deletes the group, category or line with the given id from either
// tree.
func (d *Draft) Remove(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if removeBudgetNode(&d.budget, id) || removeRevenueNode(&d.revenue, id) {
		d.version++
		return nil
	}
	return fmt.Errorf("%s: %w", id, ErrNotFound)
}

func removeBudgetNode(tree *model.BudgetTree, id string) bool {
	for gi, g := range *tree {
		if g.ID == id {
			*tree = append((*tree)[:gi], (*tree)[gi+1:]...)
			return true
		}
		for ci, c := range g.Categories {
			if c.ID == id {
				(*tree)[gi].Categories = append(g.Categories[:ci], g.Categories[ci+1:]...)
				return true
			}
			for ii, it := range c.Items {
				if it.ID == id {
					(*tree)[gi].Categories[ci].Items = append(c.Items[:ii], c.Items[ii+1:]...)
					return true
				}
			}
		}
	}
	return false
}

// RemoveBudgetItem deletes a budget group, category or line.
func (d *Draft) RemoveBudgetItem(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !removeBudgetNode(&d.budget, id) {
		return fmt.Errorf("budget node %s: %w", id, ErrNotFound)
	}
	d.version++
	return nil
}
