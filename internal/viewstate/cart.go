package viewstate

import (
	"slices"
	"sync"

	"github.com/studiowebux/carcli/internal/types"
)

// Cart is the local, append-only list of selected cars with a running total.
// It is never persisted or sent to the server.
type Cart struct {
	mu    sync.Mutex
	items []types.Car
	total float64
}

// Add appends a copy of car and adds its price to the total
func (c *Cart) Add(car types.Car) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, car)
	c.total += car.Price
}

// Items returns the selected cars in insertion order
func (c *Cart) Items() []types.Car {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Total returns the running total price
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Len returns the number of selected cars
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.total = 0
}
