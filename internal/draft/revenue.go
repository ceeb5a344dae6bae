package draft

import (
	"fmt"

	"github.com/theirongolddev/sims/internal/model"
)

// AddRevenueGroup adds a revenue group and returns its id. Adding a group
// that already exists returns the existing id.
func (d *Draft) AddRevenueGroup(name string) (string, error) {
	if !model.ValidGroup(name) {
		return "", ErrUnknownGroup
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, g := range d.revenue {
		if g.GroupName == name {
			return g.ID, nil
		}
	}
	id := newID()
	d.revenue = append(d.revenue, model.RevenueGroup{ID: id, GroupName: name})
	d.version++
	return id, nil
}

// AddRevenueCategory appends a category to a revenue group.
func (d *Draft) AddRevenueCategory(groupID, name, code string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := d.revenueGroup(groupID)
	if g == nil {
		return "", fmt.Errorf("revenue group %s: %w", groupID, ErrNotFound)
	}
	id := newID()
	g.Categories = append(g.Categories, model.RevenueCategory{ID: id, CategoryName: name, CategoryCode: code})
	d.version++
	return id, nil
}

// EnsureRevenueCategory finds or creates the group and a category of that name.
func (d *Draft) EnsureRevenueCategory(group, name, code string) (string, error) {
	gid, err := d.AddRevenueGroup(group)
	if err != nil {
		return "", err
	}
	d.mu.RLock()
	if g := d.revenueGroup(gid); g != nil {
		for _, c := range g.Categories {
			if c.CategoryName == name {
				d.mu.RUnlock()
				return c.ID, nil
			}
		}
	}
	d.mu.RUnlock()
	return d.AddRevenueCategory(gid, name, code)
}

// AddRevenueItem appends an income line to a category.
func (d *Draft) AddRevenueItem(categoryID string, item model.RevenueItem) (string, error) {
	if err := checkAmounts(item.Amount); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	c := d.revenueCategory(categoryID)
	if c == nil {
		return "", fmt.Errorf("revenue category %s: %w", categoryID, ErrNotFound)
	}
	item.ID = newID()
	c.Items = append(c.Items, item)
	d.version++
	return item.ID, nil
}

// UpdateRevenueAmount changes the amount of an income line.
func (d *Draft) UpdateRevenueAmount(itemID string, amount float64) error {
	if err := checkAmounts(amount); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for gi := range d.revenue {
		for ci := range d.revenue[gi].Categories {
			items := d.revenue[gi].Categories[ci].Items
			for ii := range items {
				if items[ii].ID == itemID {
					items[ii].Amount = amount
					d.version++
					return nil
				}
			}
		}
	}
	return fmt.Errorf("revenue item %s: %w", itemID, ErrNotFound)
}

func (d *Draft) revenueGroup(id string) *model.RevenueGroup {
	for gi := range d.revenue {
		if d.revenue[gi].ID == id {
			return &d.revenue[gi]
		}
	}
	return nil
}

func (d *Draft) revenueCategory(id string) *model.RevenueCategory {
	for gi := range d.revenue {
		g := &d.revenue[gi]
		for ci := range g.Categories {
			if g.Categories[ci].ID == id {
				return &g.Categories[ci]
			}
		}
	}
	return nil
}

func removeRevenueNode(tree *model.RevenueTree, id string) bool {
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

// RemoveRevenueItem deletes a revenue group, category or line.
func (d *Draft) RemoveRevenueItem(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !removeRevenueNode(&d.revenue, id) {
		return fmt.Errorf("revenue node %s: %w", id, ErrNotFound)
	}
	d.version++
	return nil
}
