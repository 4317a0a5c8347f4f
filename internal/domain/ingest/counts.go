package ingest

import "fmt"

// Counts reports the row-level outcome of one persistence call.
type Counts struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

func (c *Counts) Merge(other Counts) {
	c.Added += other.Added
	c.Updated += other.Updated
	c.Unchanged += other.Unchanged
}

func (c Counts) Total() int {
	return c.Added + c.Updated + c.Unchanged
}

func (c Counts) String() string {
	return fmt.Sprintf("added=%d updated=%d unchanged=%d", c.Added, c.Updated, c.Unchanged)
}
