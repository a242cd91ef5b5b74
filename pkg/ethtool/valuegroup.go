package ethtool

import (
	"strconv"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// cache object types of value groups
const (
	coalesceType = "coalesce"
	pauseType    = "pause"
	eeeType      = "eee"
	ringType     = "ring"
	channelsType = "channels"
)

// valueGroup is a family of parameters read and written with one fixed size
// native structure
type valueGroup struct {
	typ    string
	getCmd types.Cmd
	setCmd types.Cmd
	get    func(ifName string) (interface{}, error)
	set    func(ifName string, payload interface{}) error
}

func (a *Agent) coalesceGroup() *valueGroup {
	return &valueGroup{
		typ:    coalesceType,
		getCmd: types.CmdGCoalesce,
		setCmd: types.CmdSCoalesce,
		get:    func(ifName string) (interface{}, error) { return a.eth.GetCoalesce(ifName) },
		set: func(ifName string, p interface{}) error {
			return a.eth.SetCoalesce(ifName, p.(*types.Coalesce))
		},
	}
}

func (a *Agent) pauseGroup() *valueGroup {
	return &valueGroup{
		typ:    pauseType,
		getCmd: types.CmdGPauseParam,
		setCmd: types.CmdSPauseParam,
		get:    func(ifName string) (interface{}, error) { return a.eth.GetPauseParam(ifName) },
		set: func(ifName string, p interface{}) error {
			return a.eth.SetPauseParam(ifName, p.(*types.PauseParam))
		},
	}
}

func (a *Agent) eeeGroup() *valueGroup {
	return &valueGroup{
		typ:    eeeType,
		getCmd: types.CmdGEEE,
		setCmd: types.CmdSEEE,
		get:    func(ifName string) (interface{}, error) { return a.eth.GetEEE(ifName) },
		set: func(ifName string, p interface{}) error {
			return a.eth.SetEEE(ifName, p.(*types.EEE))
		},
	}
}

func (a *Agent) ringGroup() *valueGroup {
	return &valueGroup{
		typ:    ringType,
		getCmd: types.CmdGRingParam,
		setCmd: types.CmdSRingParam,
		get:    func(ifName string) (interface{}, error) { return a.eth.GetRingParam(ifName) },
		set: func(ifName string, p interface{}) error {
			return a.eth.SetRingParam(ifName, p.(*types.RingParam))
		},
	}
}

func (a *Agent) channelsGroup() *valueGroup {
	return &valueGroup{
		typ:    channelsType,
		getCmd: types.CmdGChannels,
		setCmd: types.CmdSChannels,
		get:    func(ifName string) (interface{}, error) { return a.eth.GetChannels(ifName) },
		set: func(ifName string, p interface{}) error {
			return a.eth.SetChannels(ifName, p.(*types.Channels))
		},
	}
}

func (a *Agent) materializer(g *valueGroup) cache.MaterializeFunc {
	return func(obj *cache.Object) error {
		p, err := g.get(obj.Name)
		if err != nil {
			return a.native(err, g.getCmd, obj.Name)
		}
		obj.Payload = p
		return nil
	}
}

// probe is a list handler which hides the node if the interface does not
// support the group
func (a *Agent) probe(g *valueGroup) cfgtree.ListFunc {
	return func(req *cfgtree.Request) ([]string, error) {
		ifName := req.IfName()
		if _, err := g.get(ifName); err != nil {
			return nil, a.native(err, g.getCmd, ifName)
		}
		return []string{""}, nil
	}
}

func (a *Agent) fieldGet(g *valueGroup, fields fieldTable, req *cfgtree.Request, name string) (string, error) {
	f, err := fields.lookup(name)
	if err != nil {
		return "", err
	}
	obj, err := a.shadow(g.typ, req.IfName(), req.GroupID, a.materializer(g))
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(*f.ptr(obj.Payload)), 10), nil
}

// fieldSet stores value in the shadow of group g. check, if given, validates
// the parsed value.
func (a *Agent) fieldSet(g *valueGroup, fields fieldTable, req *cfgtree.Request, name, value string,
	check func(v uint32) error) error {
	f, err := fields.lookup(name)
	if err != nil {
		return err
	}
	if f.readOnly {
		return errcode.New(errcode.PermissionDenied, "%s parameter %s is read-only", g.typ, name)
	}
	v, err := parseUint32(value)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(v); err != nil {
			return err
		}
	}
	obj, err := a.shadowForSet(g.typ, req.IfName(), req.GroupID, a.materializer(g))
	if err != nil {
		return err
	}
	*f.ptr(obj.Payload) = v
	return nil
}

func (a *Agent) groupCommit(g *valueGroup) cfgtree.CommitFunc {
	return func(gid uint32, oid cfgtree.OID) error {
		ifName := oid.Inst(InterfaceNode)
		return a.commitShadow(g.typ, ifName, gid, func(obj *cache.Object) error {
			return a.native(g.set(ifName, obj.Payload), g.setCmd, ifName)
		})
	}
}

// paramNode is a collection of all fields of a table keyed by field name
func (a *Agent) paramNode(g *valueGroup, fields fieldTable) *cfgtree.Node {
	return cfgtree.NewNodeBuilder("param").
		WithList(func(req *cfgtree.Request) ([]string, error) { return fields.names(), nil }).
		WithGet(func(req *cfgtree.Request) (string, error) {
			return a.fieldGet(g, fields, req, req.Inst("param"))
		}).
		WithSet(func(req *cfgtree.Request, value string) error {
			return a.fieldSet(g, fields, req, req.Inst("param"), value, nil)
		}).
		Build()
}

func (a *Agent) coalesceNode() *cfgtree.Node {
	g := a.coalesceGroup()
	global := cfgtree.NewNodeBuilder("global").
		WithCommit(a.groupCommit(g)).
		WithChildren(a.paramNode(g, coalesceFields)).
		Build()
	return cfgtree.NewNodeBuilder("coalesce").
		WithList(a.probe(g)).
		WithChildren(global).
		Build()
}

func checkBool(v uint32) error {
	if v > 1 {
		return errcode.New(errcode.Invalid, "invalid value %d, expected 0 or 1", v)
	}
	return nil
}

func (a *Agent) pauseNode() *cfgtree.Node {
	g := a.pauseGroup()
	children := make([]*cfgtree.Node, 0, len(pauseFields))
	for _, f := range pauseFields.names() {
		name := f
		children = append(children, cfgtree.NewNodeBuilder(name).
			WithGet(func(req *cfgtree.Request) (string, error) {
				return a.fieldGet(g, pauseFields, req, name)
			}).
			WithSet(func(req *cfgtree.Request, value string) error {
				return a.fieldSet(g, pauseFields, req, name, value, checkBool)
			}).
			Build())
	}
	return cfgtree.NewNodeBuilder("pause").
		WithList(a.probe(g)).
		WithCommit(a.groupCommit(g)).
		WithChildren(children...).
		Build()
}

func (a *Agent) eeeNode() *cfgtree.Node {
	g := a.eeeGroup()
	return cfgtree.NewNodeBuilder("eee").
		WithList(a.probe(g)).
		WithCommit(a.groupCommit(g)).
		WithChildren(a.paramNode(g, eeeFields)).
		Build()
}

// limitsNode builds the ring and channels subtrees: one container per queue
// kind with the configured and the maximum value
func (a *Agent) limitsNode(nodeName string, g *valueGroup, current, maxima fieldTable) *cfgtree.Node {
	children := make([]*cfgtree.Node, 0, len(current))
	for _, f := range current.names() {
		name := f
		cur := cfgtree.NewNodeBuilder("current").
			WithGet(func(req *cfgtree.Request) (string, error) {
				return a.fieldGet(g, current, req, name)
			}).
			WithSet(func(req *cfgtree.Request, value string) error {
				return a.fieldSet(g, current, req, name, value, nil)
			}).
			Build()
		mx := cfgtree.NewNodeBuilder("max").
			WithGet(func(req *cfgtree.Request) (string, error) {
				return a.fieldGet(g, maxima, req, name)
			}).
			Build()
		children = append(children, cfgtree.NewNodeBuilder(name).WithChildren(cur, mx).Build())
	}
	return cfgtree.NewNodeBuilder(nodeName).
		WithList(a.probe(g)).
		WithCommit(a.groupCommit(g)).
		WithChildren(children...).
		Build()
}

func (a *Agent) ringNode() *cfgtree.Node {
	return a.limitsNode("ring", a.ringGroup(), ringCurrentFields, ringMaxFields)
}

func (a *Agent) channelsNode() *cfgtree.Node {
	return a.limitsNode("channels", a.channelsGroup(), channelsCurrentFields, channelsMaxFields)
}
