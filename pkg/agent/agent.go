// Package agent wires the configuration tree, the object cache and the
// adapters of one agent and executes batches of tree operations.
package agent

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/netns"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/route"
)

// Agent structure defines data for agent
type Agent struct {
	log     klog.Logger
	opts    *Options
	tree    *cfgtree.Tree
	cache   *cache.Cache
	nl      netwrappers.NetlinkProvider
	journal Journal

	// lastGroup is the last allocated group id, group 0 is never used
	lastGroup uint32
	// now is replaced in tests
	now func() time.Time
}

// NewAgent creates an Agent with all nodes registered
func NewAgent(opts *Options, eth netwrappers.EthtoolProvider, nl netwrappers.NetlinkProvider,
	dev netwrappers.DeviceInfoProvider) (*Agent, error) {
	log := klog.NewKlogr().WithName("agent").WithValues("agent", opts.AgentName)
	a := &Agent{
		log:   log,
		opts:  opts,
		tree:  cfgtree.NewTree(opts.AgentName, log.WithName("tree")),
		cache: cache.New(opts.CacheSlots, log.WithName("cache")),
		nl:    nl,
		now:   time.Now,
	}
	if opts.CommitJournalPath != "" {
		a.journal = NewJournalFileWriterImpl(opts.CommitJournalPath, log.WithName("journal"))
	}

	if err := a.tree.Register("/"+cfgtree.RootName, a.interfaceNode(),
		route.NewAdapter(a.cache, nl, log.WithName("route")).Node()); err != nil {
		return nil, errors.Wrap(err, "failed to register agent nodes")
	}
	eAgent := ethtool.NewAgent(a.cache, eth, nl, dev, log.WithName("ethtool"))
	if err := eAgent.Register(a.tree, "/"+cfgtree.RootName+"/"+ethtool.InterfaceNode); err != nil {
		return nil, errors.Wrap(err, "failed to register ethtool nodes")
	}
	return a, nil
}

// Tree returns the configuration tree of the agent
func (a *Agent) Tree() *cfgtree.Tree {
	return a.tree
}

// OID returns the instance identifier of the agent root
func (a *Agent) OID() string {
	return a.tree.AgentOID().String()
}

// interfaceNode is the collection of network interfaces of the namespace
func (a *Agent) interfaceNode() *cfgtree.Node {
	return cfgtree.NewNodeBuilder(ethtool.InterfaceNode).
		WithGet(a.interfaceGet).
		WithList(a.interfaceList).
		Build()
}

// interfaceGet returns the interface index
func (a *Agent) interfaceGet(req *cfgtree.Request) (string, error) {
	ifName := req.IfName()
	link, err := a.nl.LinkByName(ifName)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return "", errcode.New(errcode.NotFound, "interface %s", ifName)
		}
		return "", errcode.FromErrno(err, "failed to get interface %s", ifName)
	}
	return strconv.Itoa(link.Attrs().Index), nil
}

func (a *Agent) interfaceList(req *cfgtree.Request) ([]string, error) {
	links, err := a.nl.LinkList()
	if err != nil {
		return nil, errcode.FromErrno(err, "failed to list interfaces")
	}
	names := sets.New[string]()
	for _, link := range links {
		names.Insert(link.Attrs().Name)
	}
	return sets.List(names), nil
}

func (a *Agent) newGroup() uint32 {
	return atomic.AddUint32(&a.lastGroup, 1)
}

// Apply executes operations in a new group inside the agent network
// namespace and commits the group. Operations stop at the first failure in
// which case nothing is committed.
func (a *Agent) Apply(batchID string, ops []Operation) ([]Result, error) {
	var results []Result
	err := netns.Do(a.opts.Netns, func() error {
		var err error
		results, err = a.apply(batchID, ops)
		return err
	})
	return results, err
}

func (a *Agent) apply(batchID string, ops []Operation) ([]Result, error) {
	gid := a.newGroup()
	log := a.log.WithValues("batch", batchID, "group", gid)
	log.V(2).Info("applying batch", "operations", len(ops))

	results := make([]Result, 0, len(ops))
	for i := range ops {
		res, err := a.do(gid, &ops[i])
		if err != nil {
			log.Error(err, "operation failed", "index", i, "op", ops[i].Op, "oid", ops[i].OID)
			a.tree.Discard(gid)
			a.cache.Cleanup()
			return results, errors.Wrapf(err, "operation %d (%s %s) failed", i, ops[i].Op, ops[i].OID)
		}
		results = append(results, res)
	}

	pending := a.tree.Pending(gid)
	if len(pending) == 0 {
		return results, nil
	}
	err := a.tree.Commit(gid)
	if err != nil {
		log.Error(err, "commit failed", "instances", pending)
	} else {
		log.Info("committed", "instances", pending)
	}
	if a.journal != nil {
		jerr := a.journal.Record(JournalEntry{
			Time:    a.now(),
			BatchID: batchID,
			Group:   gid,
			OIDs:    pending,
			Err:     err,
		})
		if jerr != nil {
			log.Error(jerr, "failed to record commit in journal")
		}
	}
	return results, err
}

func (a *Agent) do(gid uint32, op *Operation) (Result, error) {
	res := Result{Operation: *op}
	var err error
	switch op.Op {
	case OpGet:
		res.Value, err = a.tree.Get(gid, op.OID)
	case OpSet:
		err = a.tree.Set(gid, op.OID, op.Value)
	case OpAdd:
		err = a.tree.Add(gid, op.OID, op.Value)
	case OpDel:
		err = a.tree.Del(gid, op.OID)
	case OpList:
		res.Names, err = a.tree.List(gid, op.OID, op.SubID)
	case OpWalk:
		oid := op.OID
		if oid == "" {
			oid = a.OID()
		}
		res.Entries, err = a.tree.Walk(gid, oid)
	case OpCommit:
		err = a.tree.CommitOID(gid, op.OID)
	default:
		err = errcode.New(errcode.Invalid, "unknown operation %q", op.Op)
	}
	return res, err
}
