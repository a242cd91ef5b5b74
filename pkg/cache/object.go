package cache

import "fmt"

// Action defines how commit treats a shadow object
type Action int

const (
	// ActionGet is the action of an object which was only materialized
	ActionGet Action = iota
	// ActionCreate is the action of an object added within the group
	ActionCreate
	// ActionSet is the action of an object modified within the group
	ActionSet
	// ActionDelete is the action of an object marked for deletion
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionGet:
		return "get"
	case ActionCreate:
		return "create"
	case ActionSet:
		return "set"
	case ActionDelete:
		return "delete"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

const (
	// AttrNameMax is the maximum length of an attribute name
	AttrNameMax = 32
	// AttrValueMax is the maximum length of an attribute value
	AttrValueMax = 256
)

// FreeFunc releases resources held by an object payload
type FreeFunc func(payload interface{})

// MaterializeFunc populates a newly allocated object from native state.
// It is expected to set the object payload (and optionally its free function).
type MaterializeFunc func(obj *Object) error

// Attr is a named attribute of an object
type Attr struct {
	Name  string
	Value string
}

// Object is a shadow of a native object, keyed by (Type, Name, GroupID)
type Object struct {
	Type    string
	Name    string
	GroupID uint32
	Action  Action
	// Value is the optional value of the object, empty when unset
	Value string
	// Payload is owned by the object and released by Free
	Payload interface{}

	free  FreeFunc
	attrs []Attr
	slot  int
}

// SetFree sets the function used to release the payload
func (o *Object) SetFree(f FreeFunc) {
	o.free = f
}

// Attr returns the value of the named attribute
func (o *Object) Attr(name string) (string, bool) {
	for _, a := range o.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attrs returns attributes in insertion order
func (o *Object) Attrs() []Attr {
	attrs := make([]Attr, len(o.attrs))
	copy(attrs, o.attrs)
	return attrs
}

// String returns a short printable form of the object key
func (o *Object) String() string {
	return fmt.Sprintf("%s:%s@%d(%s)", o.Type, o.Name, o.GroupID, o.Action)
}
