// Package cfgtree implements the configuration tree handler façade.
//
// Nodes are registered under object paths (/agent/interface/coalesce) and
// addressed by instance identifiers (/agent:ta/interface:eth0/coalesce:).
// Set, add and del record the commit handler responsible for the touched
// instance; Commit runs recorded commits of a group in first-touch order.
package cfgtree

import (
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

const (
	// RootName is the name of the root node
	RootName = "agent"
	// MaxValueLen bounds the length of a value returned by get
	MaxValueLen = 4096
)

type pendingCommit struct {
	node *Node
	oid  OID
}

// Entry is an instance visited by Walk
type Entry struct {
	OID   string
	Value string
}

// NewTree creates a new Tree for agent named agentName
func NewTree(agentName string, log klog.Logger) *Tree {
	return &Tree{
		log:       log,
		agentName: agentName,
		root:      NewNodeBuilder(RootName).Build(),
		pending:   make(map[uint32][]pendingCommit),
	}
}

// Tree is the configuration tree of one agent.
// Requests are serialized, handlers must not call back into the tree.
type Tree struct {
	mu        sync.Mutex
	log       klog.Logger
	agentName string
	root      *Node
	pending   map[uint32][]pendingCommit
}

// AgentName returns the agent instance name
func (t *Tree) AgentName() string {
	return t.agentName
}

// AgentOID returns the instance identifier of the root
func (t *Tree) AgentOID() OID {
	return OID{{Name: RootName, Inst: t.agentName}}
}

// Register adds nodes under the node at object path parentPath
func (t *Tree) Register(parentPath string, nodes ...*Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	parts, err := splitObjectPath(parentPath)
	if err != nil {
		return err
	}
	if len(parts) == 0 || parts[0] != RootName {
		return errcode.New(errcode.Invalid, "object path %s is not below /%s", parentPath, RootName)
	}
	parent := t.root
	for _, p := range parts[1:] {
		parent = parent.Child(p)
		if parent == nil {
			return errcode.New(errcode.NotFound, "object %s", parentPath)
		}
	}
	for _, n := range nodes {
		if parent.Child(n.Name) != nil {
			return errcode.New(errcode.AlreadyExists, "object %s/%s", parentPath, n.Name)
		}
		n.parent = parent
		parent.children = append(parent.children, n)
		t.log.V(5).Info("registered node", "parent", parentPath, "name", n.Name)
	}
	return nil
}

// resolve finds the node addressed by oid
func (t *Tree) resolve(oidStr string) (*Node, OID, error) {
	oid, err := ParseOID(oidStr)
	if err != nil {
		return nil, nil, err
	}
	if len(oid) == 0 || oid[0].Name != RootName {
		return nil, nil, errcode.New(errcode.NotFound, "oid %s", oidStr)
	}
	if oid[0].Inst != t.agentName {
		return nil, nil, errcode.New(errcode.NotFound, "agent %s", oid[0].Inst)
	}
	node := t.root
	for _, s := range oid[1:] {
		node = node.Child(s.Name)
		if node == nil {
			return nil, nil, errcode.New(errcode.NotFound, "oid %s", oidStr)
		}
	}
	return node, oid, nil
}

func newRequest(gid uint32, oid OID) *Request {
	keys := make([]string, 0, len(oid))
	for _, s := range oid[1:] {
		keys = append(keys, s.Inst)
	}
	return &Request{GroupID: gid, OID: oid, Keys: keys}
}

// Get returns the value of the instance oid
func (t *Tree) Get(gid uint32, oidStr string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return "", err
	}
	return t.get(node, gid, oid)
}

func (t *Tree) get(node *Node, gid uint32, oid OID) (string, error) {
	if node.Get == nil {
		return "", nil
	}
	val, err := node.Get(newRequest(gid, oid))
	if err != nil {
		if errcode.Is(err, errcode.NotSupported) {
			return "", errcode.New(errcode.NotFound, "%s is not supported", oid)
		}
		return "", err
	}
	if len(val) >= MaxValueLen {
		return "", errcode.New(errcode.SmallBuffer, "value of %s", oid)
	}
	return val, nil
}

// Set sets the value of the instance oid and records its commit
func (t *Tree) Set(gid uint32, oidStr, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return err
	}
	if node.Set == nil {
		return errcode.New(errcode.PermissionDenied, "%s is read-only", oid)
	}
	t.log.V(10).Info("Set()", "group", gid, "oid", oid.String(), "value", value)
	if err := node.Set(newRequest(gid, oid), value); err != nil {
		return err
	}
	t.recordCommit(gid, node, oid)
	return nil
}

// Add adds the instance oid and records its commit
func (t *Tree) Add(gid uint32, oidStr, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return err
	}
	if node.Add == nil {
		return errcode.New(errcode.PermissionDenied, "cannot add %s", oid)
	}
	t.log.V(10).Info("Add()", "group", gid, "oid", oid.String(), "value", value)
	if err := node.Add(newRequest(gid, oid), value); err != nil {
		return err
	}
	t.recordCommit(gid, node, oid)
	return nil
}

// Del deletes the instance oid and records its commit
func (t *Tree) Del(gid uint32, oidStr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return err
	}
	if node.Del == nil {
		return errcode.New(errcode.PermissionDenied, "cannot delete %s", oid)
	}
	t.log.V(10).Info("Del()", "group", gid, "oid", oid.String())
	if err := node.Del(newRequest(gid, oid)); err != nil {
		return err
	}
	t.recordCommit(gid, node, oid)
	return nil
}

// List returns instance names of child subID of the instance oid
func (t *Tree) List(gid uint32, oidStr, subID string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return nil, err
	}
	child := node.Child(subID)
	if child == nil {
		return nil, errcode.New(errcode.NotFound, "%s has no %s", oid, subID)
	}
	return t.list(child, gid, oid)
}

func (t *Tree) list(node *Node, gid uint32, parent OID) ([]string, error) {
	if node.List == nil {
		return []string{""}, nil
	}
	names, err := node.List(newRequest(gid, parent))
	if err != nil {
		if errcode.Is(err, errcode.NotSupported) {
			return []string{}, nil
		}
		return nil, err
	}
	return names, nil
}

// Commit runs commits recorded for group gid in first-touch order. All
// recorded commits are run and forgotten even if some of them fail.
func (t *Tree) Commit(gid uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := t.pending[gid]
	delete(t.pending, gid)

	var errs []error
	for _, p := range pending {
		t.log.V(10).Info("Commit()", "group", gid, "oid", p.oid.String())
		if err := p.node.Commit(gid, p.oid); err != nil {
			t.log.Error(err, "commit failed", "group", gid, "oid", p.oid.String())
			errs = append(errs, err)
		}
	}
	if len(errs) == 1 {
		// keep the error kind visible to callers
		return errs[0]
	}
	return utilerrors.NewAggregate(errs)
}

// CommitOID runs the commit handler of the instance oid
func (t *Tree) CommitOID(gid uint32, oidStr string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return err
	}
	if node.Commit == nil {
		return errcode.New(errcode.NotFound, "%s has no commit", oid)
	}
	t.forgetCommit(gid, oid)
	return node.Commit(gid, oid)
}

// Pending returns instance identifiers waiting for commit in group gid
func (t *Tree) Pending(gid uint32) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	oids := make([]string, 0, len(t.pending[gid]))
	for _, p := range t.pending[gid] {
		oids = append(oids, p.oid.String())
	}
	return oids
}

// Discard forgets commits recorded for group gid
func (t *Tree) Discard(gid uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, gid)
}

func (t *Tree) recordCommit(gid uint32, node *Node, oid OID) {
	cn, depth := node.commitNode(len(oid))
	if cn == nil {
		return
	}
	coid := oid.Prefix(depth)
	key := coid.String()
	for _, p := range t.pending[gid] {
		if p.oid.String() == key {
			return
		}
	}
	t.pending[gid] = append(t.pending[gid], pendingCommit{node: cn, oid: coid})
}

func (t *Tree) forgetCommit(gid uint32, oid OID) {
	key := oid.String()
	pending := t.pending[gid][:0]
	for _, p := range t.pending[gid] {
		if p.oid.String() != key {
			pending = append(pending, p)
		}
	}
	t.pending[gid] = pending
}

// Walk returns the instance oid and all its descendants with their values.
// Instances which are not found are skipped with their subtrees.
func (t *Tree) Walk(gid uint32, oidStr string) ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	node, oid, err := t.resolve(oidStr)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := t.walk(node, gid, oid, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *Tree) walk(node *Node, gid uint32, oid OID, entries *[]Entry) error {
	val, err := t.get(node, gid, oid)
	if err != nil {
		if errcode.Is(err, errcode.NotFound) {
			return nil
		}
		return err
	}
	*entries = append(*entries, Entry{OID: oid.String(), Value: val})

	for _, child := range node.children {
		names, err := t.list(child, gid, oid)
		if err != nil {
			if errcode.Is(err, errcode.NotFound) {
				continue
			}
			return err
		}
		for _, name := range names {
			if err := t.walk(child, gid, oid.Child(child.Name, name), entries); err != nil {
				return err
			}
		}
	}
	return nil
}
