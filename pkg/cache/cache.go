// Package cache implements the deferred-commit object cache.
//
// Objects are shadows of native structures keyed by (type, name, group id).
// Handlers accumulate changes in a shadow and the commit handler of the
// parent node applies it and frees the object. A shadow never outlives its
// group: allocating a slot evicts objects which belong to another group.
package cache

import (
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

// DefaultCapacity is the default number of cache slots
const DefaultCapacity = 64

// New creates a new Cache with a fixed number of slots
func New(capacity int, log klog.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		log:   log,
		slots: make([]*Object, capacity),
	}
}

// Cache is a fixed-size table of shadow objects.
// It is not safe for concurrent use, callers serialize requests.
type Cache struct {
	log   klog.Logger
	slots []*Object
	used  int
}

// Capacity returns the number of slots
func (c *Cache) Capacity() int {
	return len(c.slots)
}

// Len returns the number of live objects
func (c *Cache) Len() int {
	return c.used
}

// Find returns the object with the given key or nil
func (c *Cache) Find(typ, name string, gid uint32) *Object {
	for _, o := range c.slots {
		if o != nil && o.GroupID == gid && o.Type == typ && o.Name == name {
			return o
		}
	}
	return nil
}

// Objects returns live objects of the given type and group in slot order
func (c *Cache) Objects(typ string, gid uint32) []*Object {
	var objs []*Object
	for _, o := range c.slots {
		if o != nil && o.GroupID == gid && o.Type == typ {
			objs = append(objs, o)
		}
	}
	return objs
}

// Add adds a new object with ActionCreate. The object owns payload.
func (c *Cache) Add(typ, name, value string, gid uint32, payload interface{}, free FreeFunc) (*Object, error) {
	if c.Find(typ, name, gid) != nil {
		return nil, errcode.New(errcode.AlreadyExists, "object %s:%s in group %d", typ, name, gid)
	}

	o, err := c.alloc(typ, name, gid, ActionCreate)
	if err != nil {
		return nil, err
	}
	o.Value = value
	o.Payload = payload
	o.free = free
	return o, nil
}

// FindOrCreate returns the object with the given key. If it does not exist,
// it is allocated with ActionGet and populated by materialize. On failure the
// partially initialized object is freed. The returned bool is true if the
// object was created.
func (c *Cache) FindOrCreate(typ, name string, gid uint32, materialize MaterializeFunc) (*Object, bool, error) {
	return c.findOrCreate(typ, name, gid, ActionGet, materialize)
}

func (c *Cache) findOrCreate(typ, name string, gid uint32, action Action,
	materialize MaterializeFunc) (*Object, bool, error) {
	if o := c.Find(typ, name, gid); o != nil {
		return o, false, nil
	}

	o, err := c.alloc(typ, name, gid, action)
	if err != nil {
		return nil, false, err
	}
	if materialize != nil {
		if err := materialize(o); err != nil {
			c.log.V(5).Info("failed to materialize object", "object", o.String(), "error", err.Error())
			c.Free(o)
			return nil, false, err
		}
	}
	return o, true, nil
}

// ValueSet replaces the value of an object, creating it with ActionSet
// if it does not exist.
func (c *Cache) ValueSet(typ, name, value string, gid uint32, materialize MaterializeFunc) error {
	o, err := c.ensureForSet(typ, name, gid, materialize)
	if err != nil {
		return err
	}
	o.Value = value
	return nil
}

// Set sets an attribute of an object, creating it with ActionSet
// if it does not exist.
func (c *Cache) Set(typ, name, attr, value string, gid uint32, materialize MaterializeFunc) error {
	o, err := c.ensureForSet(typ, name, gid, materialize)
	if err != nil {
		return err
	}
	return c.AttrSet(o, attr, value)
}

// EnsureForSet returns the object with the given key prepared for
// modification: created with ActionSet if absent, promoted from ActionGet to
// ActionSet if present. Objects marked for deletion cannot be modified.
func (c *Cache) EnsureForSet(typ, name string, gid uint32, materialize MaterializeFunc) (*Object, error) {
	return c.ensureForSet(typ, name, gid, materialize)
}

func (c *Cache) ensureForSet(typ, name string, gid uint32, materialize MaterializeFunc) (*Object, error) {
	o, _, err := c.findOrCreate(typ, name, gid, ActionSet, materialize)
	if err != nil {
		return nil, err
	}
	switch o.Action {
	case ActionDelete:
		return nil, errcode.New(errcode.Invalid, "object %s is marked for deletion", o.String())
	case ActionGet:
		o.Action = ActionSet
	}
	return o, nil
}

// AttrSet adds or replaces an attribute of the object
func (c *Cache) AttrSet(o *Object, name, value string) error {
	if len(name) >= AttrNameMax || len(value) >= AttrValueMax {
		return errcode.New(errcode.NameTooLong, "attribute %s of %s", name, o.String())
	}
	for i := range o.attrs {
		if o.attrs[i].Name == name {
			o.attrs[i].Value = value
			return nil
		}
	}
	o.attrs = append(o.attrs, Attr{Name: name, Value: value})
	return nil
}

// DeleteMark marks an object for deletion. An absent object is created with
// ActionDelete, given payload and populated by materialize (if provided).
// Objects added within the group cannot be deleted.
func (c *Cache) DeleteMark(typ, name string, payload interface{}, free FreeFunc, gid uint32,
	materialize MaterializeFunc) error {
	if o := c.Find(typ, name, gid); o != nil {
		if o.Action == ActionCreate {
			return errcode.New(errcode.LocallyAdded, "object %s", o.String())
		}
		o.Action = ActionDelete
		return nil
	}

	o, err := c.alloc(typ, name, gid, ActionDelete)
	if err != nil {
		return err
	}
	o.Payload = payload
	o.free = free
	if materialize != nil {
		if err := materialize(o); err != nil {
			c.Free(o)
			return err
		}
	}
	return nil
}

// Free releases the object payload and returns its slot
func (c *Cache) Free(o *Object) {
	if o == nil || o.slot < 0 || o.slot >= len(c.slots) || c.slots[o.slot] != o {
		return
	}
	c.log.V(5).Info("free object", "object", o.String())
	if o.free != nil && o.Payload != nil {
		o.free(o.Payload)
	}
	o.Payload = nil
	o.free = nil
	o.attrs = nil
	o.Value = ""
	c.slots[o.slot] = nil
	o.slot = -1
	c.used--
}

// Cleanup frees all objects
func (c *Cache) Cleanup() {
	for _, o := range c.slots {
		if o != nil {
			c.Free(o)
		}
	}
}

// alloc takes a free slot evicting objects which belong to another group
func (c *Cache) alloc(typ, name string, gid uint32, action Action) (*Object, error) {
	free := -1
	for i, o := range c.slots {
		if o != nil && o.GroupID != gid {
			c.log.V(5).Info("evict stale object", "object", o.String(), "group", gid)
			c.Free(o)
		}
		if c.slots[i] == nil && free < 0 {
			free = i
		}
	}
	if free < 0 {
		return nil, errcode.New(errcode.NoMemory, "no free slot for %s:%s", typ, name)
	}

	o := &Object{
		Type:    typ,
		Name:    name,
		GroupID: gid,
		Action:  action,
		slot:    free,
	}
	c.slots[free] = o
	c.used++
	c.log.V(5).Info("allocated object", "object", o.String())
	return o, nil
}
