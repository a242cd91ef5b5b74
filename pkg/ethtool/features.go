package ethtool

import (
	"strconv"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

type feature struct {
	name     string
	enabled  bool
	readOnly bool
	dirty    bool
}

// featureContext is the feature view of one interface. It is not tied to a
// group: changes made in any group are applied by the next feature commit.
type featureContext struct {
	valid    bool
	features []feature
}

func (c *featureContext) lookup(name string) (*feature, error) {
	if c.valid {
		for i := range c.features {
			if c.features[i].name == name {
				return &c.features[i], nil
			}
		}
	}
	return nil, errcode.New(errcode.NotFound, "no feature %q", name)
}

// featuresOf returns the context of the interface, reading it from the
// kernel on first use
func (a *Agent) featuresOf(ifName string) (*featureContext, error) {
	if ctx, ok := a.features[ifName]; ok {
		return ctx, nil
	}

	count, err := a.eth.GetStringSetLen(ifName, types.StringSetFeatures)
	if err != nil && !errcode.Is(err, errcode.NotSupported) {
		return nil, a.native(err, types.CmdGSSetInfo, ifName)
	}
	if err != nil || count == 0 {
		a.log.V(4).Info("interface has no features", "interface", ifName)
		ctx := &featureContext{}
		a.features[ifName] = ctx
		return ctx, nil
	}

	names, err := a.eth.GetStrings(ifName, types.StringSetFeatures, count)
	if err != nil {
		return nil, a.native(err, types.CmdGStrings, ifName)
	}
	blocks, err := a.eth.GetFeatures(ifName, types.FeatureBlocks(uint32(len(names))))
	if err != nil {
		return nil, a.native(err, types.CmdGFeatures, ifName)
	}

	ctx := &featureContext{valid: true, features: make([]feature, len(names))}
	for i, name := range names {
		blk, bit := types.FeatureBit(uint32(i))
		f := &ctx.features[i]
		f.name = name
		if int(blk) < len(blocks) {
			b := blocks[blk]
			f.enabled = b.Active&bit != 0
			f.readOnly = b.Available&bit == 0 || b.NeverChanged&bit != 0
		} else {
			f.readOnly = true
		}
	}
	a.features[ifName] = ctx
	a.log.V(3).Info("read interface features", "interface", ifName, "count", len(names))
	return ctx, nil
}

func (a *Agent) featureNode() *cfgtree.Node {
	readonly := cfgtree.NewNodeBuilder("readonly").WithGet(a.featureReadOnlyGet).Build()
	return cfgtree.NewNodeBuilder("feature").
		WithList(a.featureList).
		WithGet(a.featureGet).
		WithSet(a.featureSet).
		WithCommit(a.featureCommit).
		WithChildren(readonly).
		Build()
}

func (a *Agent) featureList(req *cfgtree.Request) ([]string, error) {
	ctx, err := a.featuresOf(req.IfName())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ctx.features))
	if ctx.valid {
		for i := range ctx.features {
			names = append(names, ctx.features[i].name)
		}
	}
	return names, nil
}

func (a *Agent) lookupFeature(req *cfgtree.Request) (*feature, error) {
	ctx, err := a.featuresOf(req.IfName())
	if err != nil {
		return nil, err
	}
	return ctx.lookup(req.Inst("feature"))
}

func (a *Agent) featureGet(req *cfgtree.Request) (string, error) {
	f, err := a.lookupFeature(req)
	if err != nil {
		return "", err
	}
	return formatBool(f.enabled), nil
}

func (a *Agent) featureReadOnlyGet(req *cfgtree.Request) (string, error) {
	f, err := a.lookupFeature(req)
	if err != nil {
		return "", err
	}
	return formatBool(f.readOnly), nil
}

func (a *Agent) featureSet(req *cfgtree.Request, value string) error {
	f, err := a.lookupFeature(req)
	if err != nil {
		return err
	}
	if f.readOnly {
		return errcode.New(errcode.PermissionDenied, "feature %s of %s is read-only", f.name, req.IfName())
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return errcode.New(errcode.Invalid, "invalid feature value %q", value)
	}
	f.enabled = v == 1
	f.dirty = true
	return nil
}

func (a *Agent) featureCommit(gid uint32, oid cfgtree.OID) error {
	ifName := oid.Inst(InterfaceNode)
	ctx, ok := a.features[ifName]
	if !ok || !ctx.valid {
		return errcode.New(errcode.NotFound, "no features of %s", ifName)
	}

	blocks := make([]types.SetFeatureBlock, types.FeatureBlocks(uint32(len(ctx.features))))
	changed := 0
	for i := range ctx.features {
		f := &ctx.features[i]
		if f.dirty && !f.readOnly {
			blk, bit := types.FeatureBit(uint32(i))
			blocks[blk].Valid |= bit
			if f.enabled {
				blocks[blk].Requested |= bit
			}
			changed++
		}
		f.dirty = false
	}
	a.log.V(3).Info("commit features", "interface", ifName, "changed", changed, "group", gid)
	return a.native(a.eth.SetFeatures(ifName, blocks), types.CmdSFeatures, ifName)
}
