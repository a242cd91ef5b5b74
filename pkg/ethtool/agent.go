// Package ethtool exposes ethtool configuration groups of network interfaces
// as configuration tree nodes.
//
// Every group keeps a shadow of the kernel structure in the object cache.
// Sets modify the shadow and commit of the group container applies it with
// a single native request.
package ethtool

import (
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
)

// InterfaceNode is the name of the node the ethtool groups are registered under
const InterfaceNode = "interface"

// rxAddState tracks the rule add protocol: one rule may be added at a time
type rxAddState struct {
	inProgress bool
	ifName     string
	lastAdded  int64
	// object and group of the rule being added
	objName string
	gid     uint32
}

// NewAgent creates a new Agent
func NewAgent(c *cache.Cache, eth netwrappers.EthtoolProvider, nl netwrappers.NetlinkProvider,
	dev netwrappers.DeviceInfoProvider, log klog.Logger) *Agent {
	return &Agent{
		log:      log,
		cache:    c,
		eth:      eth,
		nl:       nl,
		dev:      dev,
		features: make(map[string]*featureContext),
		rxAdd:    rxAddState{lastAdded: -1},
	}
}

// Agent holds ethtool group adapters state. It is not safe for concurrent
// use, requests are expected to be serialized by the configuration tree.
type Agent struct {
	log   klog.Logger
	cache *cache.Cache
	eth   netwrappers.EthtoolProvider
	nl    netwrappers.NetlinkProvider
	dev   netwrappers.DeviceInfoProvider

	// features are per interface contexts which live as long as the agent
	features map[string]*featureContext
	rxAdd    rxAddState
}

// Nodes returns ethtool group nodes to be registered below the interface node
func (a *Agent) Nodes() []*cfgtree.Node {
	return []*cfgtree.Node{
		a.coalesceNode(),
		a.pauseNode(),
		a.eeeNode(),
		a.ringNode(),
		a.channelsNode(),
		a.pflagNode(),
		a.phyNode(),
		a.featureNode(),
		a.rssNode(),
		a.rxRulesNode(),
		a.deviceInfoNode(),
		a.resetNode(),
	}
}

// Register registers ethtool group nodes below the interface node at parentPath
func (a *Agent) Register(tree *cfgtree.Tree, parentPath string) error {
	return tree.Register(parentPath, a.Nodes()...)
}

// native converts an error of a native request to an errcode error
func (a *Agent) native(err error, cmd types.Cmd, ifName string) error {
	if err == nil {
		return nil
	}
	err = errcode.FromErrno(err, "%s on %s", cmd, ifName)
	if errcode.Is(err, errcode.NotSupported) {
		a.log.V(4).Info("native request is not supported", "cmd", cmd.String(), "interface", ifName)
	} else {
		a.log.Error(err, "native request failed", "cmd", cmd.String(), "interface", ifName)
	}
	return err
}

// shadow returns the shadow of typ for name in group gid, materializing it on first use
func (a *Agent) shadow(typ, name string, gid uint32, materialize cache.MaterializeFunc) (*cache.Object, error) {
	obj, _, err := a.cache.FindOrCreate(typ, name, gid, materialize)
	return obj, err
}

// shadowForSet returns the shadow of typ for name prepared for modification
func (a *Agent) shadowForSet(typ, name string, gid uint32, materialize cache.MaterializeFunc) (*cache.Object, error) {
	return a.cache.EnsureForSet(typ, name, gid, materialize)
}

// commitShadow applies the shadow of typ for name and frees it regardless of the result
func (a *Agent) commitShadow(typ, name string, gid uint32, apply func(obj *cache.Object) error) error {
	obj := a.cache.Find(typ, name, gid)
	if obj == nil {
		return errcode.New(errcode.NotFound, "no %s changes of %s in group %d", typ, name, gid)
	}
	a.log.V(10).Info("commit shadow", "object", obj.String())
	err := apply(obj)
	a.cache.Free(obj)
	return err
}
