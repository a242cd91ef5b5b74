package ethtool

import (
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

const pflagsType = "pflags"

func (a *Agent) pflagNode() *cfgtree.Node {
	return cfgtree.NewNodeBuilder("pflag").
		WithList(a.pflagList).
		WithGet(a.pflagGet).
		WithSet(a.pflagSet).
		WithCommit(a.pflagCommit).
		Build()
}

func (a *Agent) pflagsMaterialize(obj *cache.Object) error {
	flags, err := a.eth.GetPrivFlags(obj.Name)
	if err != nil {
		return a.native(err, types.CmdGPFlags, obj.Name)
	}
	obj.Payload = &flags
	return nil
}

func (a *Agent) pflagList(req *cfgtree.Request) ([]string, error) {
	return a.stringSet(req.GroupID, req.IfName(), types.StringSetPrivFlags)
}

// pflagBit returns the bit of the private flag named in req
func (a *Agent) pflagBit(req *cfgtree.Request) (uint32, error) {
	strs, err := a.stringSet(req.GroupID, req.IfName(), types.StringSetPrivFlags)
	if err != nil {
		return 0, err
	}
	idx, err := stringIndex(strs, req.Inst("pflag"))
	if err != nil {
		return 0, err
	}
	if idx >= 32 {
		return 0, errcode.New(errcode.Range, "private flag %s has index %d", req.Inst("pflag"), idx)
	}
	return 1 << idx, nil
}

func (a *Agent) pflagGet(req *cfgtree.Request) (string, error) {
	bit, err := a.pflagBit(req)
	if err != nil {
		return "", err
	}
	obj, err := a.shadow(pflagsType, req.IfName(), req.GroupID, a.pflagsMaterialize)
	if err != nil {
		return "", err
	}
	return formatBool(*obj.Payload.(*uint32)&bit != 0), nil
}

func (a *Agent) pflagSet(req *cfgtree.Request, value string) error {
	bit, err := a.pflagBit(req)
	if err != nil {
		return err
	}
	on, err := parseBool(value)
	if err != nil {
		return err
	}
	obj, err := a.shadowForSet(pflagsType, req.IfName(), req.GroupID, a.pflagsMaterialize)
	if err != nil {
		return err
	}
	flags := obj.Payload.(*uint32)
	if on {
		*flags |= bit
	} else {
		*flags &^= bit
	}
	return nil
}

// pflagCommit is recorded once per modified flag, all of them are applied by
// the first one
func (a *Agent) pflagCommit(gid uint32, oid cfgtree.OID) error {
	ifName := oid.Inst(InterfaceNode)
	if a.cache.Find(pflagsType, ifName, gid) == nil {
		a.log.V(4).Info("private flags already committed", "interface", ifName, "group", gid)
		return nil
	}
	return a.commitShadow(pflagsType, ifName, gid, func(obj *cache.Object) error {
		return a.native(a.eth.SetPrivFlags(ifName, *obj.Payload.(*uint32)), types.CmdSPFlags, ifName)
	})
}
