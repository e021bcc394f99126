package cache

import "time"

// Layered reads through stores in order, promoting hits to the faster
// layers in front of the one that hit. Writes go to every layer.
type Layered struct {
	layers []Store
}

// NewLayered creates a layered store, fastest layer first
func NewLayered(layers ...Store) *Layered {
	return &Layered{layers: layers}
}

// Get checks each layer in order
func (c *Layered) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for j := 0; j < i; j++ {
			_ = c.layers[j].Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set stores value in every layer, returning the first error
func (c *Layered) Set(key string, value []byte, ttl time.Duration) error {
	var first error
	for _, layer := range c.layers {
		if err := layer.Set(key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Delete removes key from every layer
func (c *Layered) Delete(key string) error {
	var first error
	for _, layer := range c.layers {
		if err := layer.Delete(key); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Clear empties every layer
func (c *Layered) Clear() error {
	var first error
	for _, layer := range c.layers {
		if err := layer.Clear(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
