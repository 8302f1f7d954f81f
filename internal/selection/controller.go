// Package selection keeps the navigable, capped list of filtered results in
// step with keyboard and pointer navigation.
//
// Row 0 is the pinned entry (the README view). Rows 1..Upper() map to
// view[row-1]. Navigation clamps, it never wraps.
package selection

import (
	"fmt"
	"sync"
)

// DefaultCap is the number of results reachable from the list.
const DefaultCap = 300

// Direction of a single-step move.
type Direction int

const (
	Up Direction = iota
	Down
)

// Controller owns the current row over (pinned entry + view).
// It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	index    int
	view     []int
	limit    int
	onSelect func(row int)
}

// New returns a controller over view showing at most limit rows
// (DefaultCap when limit <= 0). The pinned entry starts selected.
func New(view []int, limit int) *Controller {
	if limit <= 0 {
		limit = DefaultCap
	}
	return &Controller{view: view, limit: limit}
}

// OnSelect registers fn to run after every row change. fn runs outside the
// controller lock and may query the controller.
func (c *Controller) OnSelect(fn func(row int)) {
	c.mu.Lock()
	c.onSelect = fn
	c.mu.Unlock()
}

// Upper is the highest selectable row: min(len(view), limit).
func (c *Controller) Upper() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upper()
}

func (c *Controller) upper() int {
	return min(len(c.view), c.limit)
}

// Index returns the current row.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Move steps one row up or down, holding at the bounds.
func (c *Controller) Move(d Direction) int {
	return c.set(func() int {
		if d == Down {
			return min(c.index+1, c.upper())
		}
		return max(c.index-1, 0)
	})
}

// JumpTo selects a data row, clamped to [1, Upper()]. With an empty view the
// pinned entry stays selected.
func (c *Controller) JumpTo(row int) int {
	return c.set(func() int {
		u := c.upper()
		if u == 0 {
			return 0
		}
		return max(1, min(row, u))
	})
}

// SelectPinned selects row 0.
func (c *Controller) SelectPinned() int {
	return c.set(func() int { return 0 })
}

// OnViewChanged replaces the view after a new query. The first result is
// selected when there is one, the pinned entry otherwise.
func (c *Controller) OnViewChanged(view []int) int {
	return c.set(func() int {
		c.view = view
		if len(view) > 0 {
			return 1
		}
		return 0
	})
}

func (c *Controller) set(next func() int) int {
	c.mu.Lock()
	c.index = next()
	row, fn := c.index, c.onSelect
	c.mu.Unlock()

	if fn != nil {
		fn(row)
	}
	return row
}

// Selected returns the dataset index under the current row. ok is false on
// the pinned entry.
func (c *Controller) Selected() (storeIndex int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == 0 || c.index > len(c.view) {
		return -1, false
	}
	return c.view[c.index-1], true
}

// Visible returns the capped part of the view, the rows the list shows.
func (c *Controller) Visible() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, c.upper())
	copy(out, c.view)
	return out
}

// Total is the full, uncapped number of results.
func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.view)
}

// Meta describes the result count the way the search box shows it.
func (c *Controller) Meta() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.view) == 0 {
		return "No results"
	}
	return fmt.Sprintf("Showing %d of %d", c.upper(), len(c.view))
}
