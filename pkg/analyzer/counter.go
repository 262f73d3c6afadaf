package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Count is a single key and its tally.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Counter tallies string keys and remembers the order in which each key was
// first seen. The zero value is ready to use.
type Counter struct {
	keys   []string
	counts map[string]int
}

// Inc adds one to key.
func (c *Counter) Inc(key string) {
	c.Add(key, 1)
}

// Add adds n to key, registering it if it has not been seen.
func (c *Counter) Add(key string, n int) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

// Get returns the tally for key, 0 if unseen.
func (c *Counter) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.keys)
}

// Total returns the sum of all tallies.
func (c *Counter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Keys returns the keys in first-seen order.
func (c *Counter) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Entries returns every key with its tally in first-seen order.
func (c *Counter) Entries() []Count {
	out := make([]Count, len(c.keys))
	for i, k := range c.keys {
		out[i] = Count{Key: k, Count: c.counts[k]}
	}
	return out
}

// Sorted returns the entries by descending tally. Equal tallies keep
// first-seen order.
func (c *Counter) Sorted() []Count {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// Top returns at most n entries by descending tally. n <= 0 returns all.
func (c *Counter) Top(n int) []Count {
	out := c.Sorted()
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Merge folds other into c. Keys new to c are appended in other's order.
func (c *Counter) Merge(other *Counter) {
	for _, k := range other.keys {
		c.Add(k, other.counts[k])
	}
}

// Equal reports whether both counters hold the same keys, tallies and order.
func (c *Counter) Equal(other *Counter) bool {
	if len(c.keys) != len(other.keys) {
		return false
	}
	for i, k := range c.keys {
		if other.keys[i] != k || other.counts[k] != c.counts[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the counter as a JSON object whose members appear in
// first-seen order.
func (c Counter) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", c.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping member order as first-seen
// order.
func (c *Counter) UnmarshalJSON(data []byte) error {
	*c = Counter{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("counter: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("counter: expected string key, got %v", tok)
		}

		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("counter: value for %q: %w", key, err)
		}
		c.Add(key, n)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
