package cfgtree

// Request is passed to node handlers
type Request struct {
	// GroupID scopes a batch of operations committed together
	GroupID uint32
	// OID is the instance identifier the handler is invoked for
	OID OID
	// Keys are instance names of OID components below the agent
	Keys []string
}

// Inst returns the instance name of the OID component named name
func (r *Request) Inst(name string) string {
	return r.OID.Inst(name)
}

// IfName returns the interface instance name
func (r *Request) IfName() string {
	return r.OID.Inst("interface")
}

// GetFunc returns the value of an instance
type GetFunc func(req *Request) (string, error)

// SetFunc sets the value of an instance
type SetFunc func(req *Request, value string) error

// ListFunc returns instance names of a node below the instance in req
type ListFunc func(req *Request) ([]string, error)

// AddFunc adds an instance with value
type AddFunc func(req *Request, value string) error

// DelFunc deletes an instance
type DelFunc func(req *Request) error

// CommitFunc applies changes accumulated in group gid for the instance oid
type CommitFunc func(gid uint32, oid OID) error

// Node is a node of the configuration tree
type Node struct {
	Name   string
	Get    GetFunc
	Set    SetFunc
	List   ListFunc
	Add    AddFunc
	Del    DelFunc
	Commit CommitFunc

	parent   *Node
	children []*Node
}

// Child returns the child with the given name or nil
func (n *Node) Child(name string) *Node {
	for _, c := range n.children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Children returns child nodes in registration order
func (n *Node) Children() []*Node {
	return n.children
}

// commitNode returns the node itself if it has a commit handler, else the
// nearest ancestor with one, along with the number of OID components to keep
func (n *Node) commitNode(depth int) (*Node, int) {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.Commit != nil {
			return cur, depth
		}
		depth--
	}
	return nil, 0
}

// NewNodeBuilder returns a new NodeBuilder
func NewNodeBuilder(name string) *NodeBuilder {
	return &NodeBuilder{node: &Node{Name: name}}
}

// NodeBuilder is a Node builder
type NodeBuilder struct {
	node *Node
}

// WithGet adds get handler
func (b *NodeBuilder) WithGet(f GetFunc) *NodeBuilder {
	b.node.Get = f
	return b
}

// WithSet adds set handler
func (b *NodeBuilder) WithSet(f SetFunc) *NodeBuilder {
	b.node.Set = f
	return b
}

// WithList adds list handler, making the node a collection
func (b *NodeBuilder) WithList(f ListFunc) *NodeBuilder {
	b.node.List = f
	return b
}

// WithAdd adds add handler
func (b *NodeBuilder) WithAdd(f AddFunc) *NodeBuilder {
	b.node.Add = f
	return b
}

// WithDel adds del handler
func (b *NodeBuilder) WithDel(f DelFunc) *NodeBuilder {
	b.node.Del = f
	return b
}

// WithCommit adds commit handler
func (b *NodeBuilder) WithCommit(f CommitFunc) *NodeBuilder {
	b.node.Commit = f
	return b
}

// WithChildren adds child nodes
func (b *NodeBuilder) WithChildren(children ...*Node) *NodeBuilder {
	for _, c := range children {
		c.parent = b.node
		b.node.children = append(b.node.children, c)
	}
	return b
}

// Build returns the Node
func (b *NodeBuilder) Build() *Node {
	return b.node
}
