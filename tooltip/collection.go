package tooltip

import (
	"github.com/google/uuid"
)

// Collection is the result of one Create call: the references a target
// resolved to and their instances, in the same order.
type Collection struct {
	ID         uuid.UUID
	Target     any
	Props      Props
	References []Reference
	Instances  []*Instance
}

// DestroyAll destroys every instance in the collection
func (c *Collection) DestroyAll() {
	for _, i := range c.Instances {
		i.Destroy()
	}
}

// Visible returns the collection's visible instances
func (c *Collection) Visible() []*Instance {
	var out []*Instance
	for _, i := range c.Instances {
		if i.visible {
			out = append(out, i)
		}
	}
	return out
}
