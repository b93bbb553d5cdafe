package checkout

import (
	"time"

	"github.com/tillpoint/tillpoint-backend/pkg/idgen"
)

// BasketCollection owns the ordered baskets of one register plus the active
// pointer. At least one basket always exists and the active index always
// resolves to a valid basket.
type BasketCollection struct {
	baskets []*Basket
	active  int
	max     int
	ids     idgen.Generator
	now     func() time.Time
}

// NewBasketCollection builds a collection with a single empty basket.
func NewBasketCollection(max int, ids idgen.Generator, now func() time.Time) *BasketCollection {
	if max < 1 {
		max = 1
	}
	if now == nil {
		now = time.Now
	}
	c := &BasketCollection{max: max, ids: ids, now: now}
	c.baskets = append(c.baskets, c.newBasket())
	return c
}

func (c *BasketCollection) newBasket() *Basket {
	return &Basket{ID: c.ids.Next(), OpenedAt: c.now()}
}

// Create appends an empty basket and makes it active. Fails without side
// effects when the collection is at capacity.
func (c *BasketCollection) Create() (*Basket, bool) {
	if len(c.baskets) >= c.max {
		return nil, false
	}
	b := c.newBasket()
	c.baskets = append(c.baskets, b)
	c.active = len(c.baskets) - 1
	return b, true
}

// Select sets the active index when in range, no-op otherwise.
func (c *BasketCollection) Select(index int) bool {
	if index < 0 || index >= len(c.baskets) {
		return false
	}
	c.active = index
	return true
}

// Cycle moves the active pointer circularly. A single basket never cycles.
func (c *BasketCollection) Cycle(direction int) {
	n := len(c.baskets)
	if n <= 1 {
		return
	}
	step := 1
	if direction < 0 {
		step = -1
	}
	c.active = (c.active + step + n) % n
}

// Active returns the active basket, clamping a stale index defensively.
func (c *BasketCollection) Active() *Basket {
	if c.active >= len(c.baskets) {
		c.active = len(c.baskets) - 1
	}
	if c.active < 0 {
		c.active = 0
	}
	return c.baskets[c.active]
}

// ActiveIndex returns the current active pointer.
func (c *BasketCollection) ActiveIndex() int {
	c.Active()
	return c.active
}

// Len returns the number of open baskets.
func (c *BasketCollection) Len() int {
	return len(c.baskets)
}

// Max returns the configured capacity.
func (c *BasketCollection) Max() int {
	return c.max
}

// MutateActive applies fn to the active basket.
func (c *BasketCollection) MutateActive(fn func(*Basket)) {
	fn(c.Active())
}

// HeldBasket is an overview row for a parked basket.
type HeldBasket struct {
	Index  int    `json:"index"`
	Basket Basket `json:"basket"`
}

// Held returns every non-active basket in order, capped at slots rows for
// the overview/resume surface.
func (c *BasketCollection) Held(slots int) []HeldBasket {
	c.Active()
	out := []HeldBasket{}
	for i, b := range c.baskets {
		if i == c.active {
			continue
		}
		if slots > 0 && len(out) >= slots {
			break
		}
		out = append(out, HeldBasket{Index: i, Basket: *b})
	}
	return out
}

// Baskets exposes the ordered baskets for snapshotting.
func (c *BasketCollection) Baskets() []*Basket {
	return c.baskets
}

// Restore replaces the collection contents from a snapshot, keeping the
// invariants: at least one basket, capacity respected, index in range.
func (c *BasketCollection) Restore(baskets []*Basket, active int) {
	if len(baskets) == 0 {
		return
	}
	if len(baskets) > c.max {
		baskets = baskets[:c.max]
	}
	c.baskets = baskets
	if active < 0 || active >= len(c.baskets) {
		active = 0
	}
	c.active = active
}
