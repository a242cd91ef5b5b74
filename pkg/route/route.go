package route

import (
	"net"
	"strconv"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
)

// ObjectType is the cache object type of routes
const ObjectType = "route"

// NodeName is the name of the route node below the agent
const NodeName = "route"

// NewAdapter creates a new Adapter
func NewAdapter(c *cache.Cache, nl netwrappers.NetlinkProvider, log klog.Logger) *Adapter {
	return &Adapter{log: log, cache: c, nl: nl}
}

// Adapter maps route tree operations to the object cache and kernel routes.
// Reads come from the kernel, changes are accumulated in the cache and
// applied on commit.
type Adapter struct {
	log   klog.Logger
	cache *cache.Cache
	nl    netwrappers.NetlinkProvider
}

// Node returns the route node with its attribute children
func (a *Adapter) Node() *cfgtree.Node {
	children := make([]*cfgtree.Node, 0, len(Attributes))
	for _, attr := range Attributes {
		attr := attr
		children = append(children, cfgtree.NewNodeBuilder(attr).
			WithGet(func(req *cfgtree.Request) (string, error) { return a.attrGet(req, attr) }).
			WithSet(func(req *cfgtree.Request, value string) error { return a.attrSet(req, attr, value) }).
			Build())
	}
	return cfgtree.NewNodeBuilder(NodeName).
		WithGet(a.get).
		WithSet(a.set).
		WithList(a.list).
		WithAdd(a.add).
		WithDel(a.del).
		WithCommit(a.commit).
		WithChildren(children...).
		Build()
}

func unspecified(family int) string {
	if family == unix.AF_INET6 {
		return net.IPv6unspecified.String()
	}
	return net.IPv4zero.String()
}

func addrString(ip net.IP, family int) string {
	if ip == nil {
		return unspecified(family)
	}
	return ip.String()
}

func (a *Adapter) get(req *cfgtree.Request) (string, error) {
	info, err := a.find(req.Inst(NodeName))
	if err != nil {
		return "", err
	}
	return addrString(info.Gateway, info.Family), nil
}

func (a *Adapter) attrGet(req *cfgtree.Request, attr string) (string, error) {
	info, err := a.find(req.Inst(NodeName))
	if err != nil {
		return "", err
	}
	switch attr {
	case AttrDev:
		return info.Dev, nil
	case AttrMTU:
		return strconv.FormatUint(uint64(info.MTU), 10), nil
	case AttrWin:
		return strconv.FormatUint(uint64(info.Win), 10), nil
	case AttrIRTT:
		return strconv.FormatUint(uint64(info.IRTT), 10), nil
	case AttrHoplimit:
		return strconv.FormatUint(uint64(info.Hoplimit), 10), nil
	case AttrType:
		return info.Type.String(), nil
	case AttrSrc:
		return addrString(info.Src, info.Family), nil
	}
	return "", errcode.New(errcode.NotFound, "route attribute %s", attr)
}

func (a *Adapter) set(req *cfgtree.Request, value string) error {
	if err := (&Info{}).ParseValue(value); err != nil {
		return err
	}
	return a.cache.ValueSet(ObjectType, req.Inst(NodeName), value, req.GroupID, a.loadAttrs)
}

func (a *Adapter) attrSet(req *cfgtree.Request, attr, value string) error {
	if err := (&Info{}).ParseAttr(attr, value); err != nil {
		return err
	}
	return a.cache.Set(ObjectType, req.Inst(NodeName), attr, value, req.GroupID, a.loadAttrs)
}

func (a *Adapter) add(req *cfgtree.Request, value string) error {
	name := req.Inst(NodeName)
	info, err := ParseInstance(name)
	if err != nil {
		return err
	}
	if err := info.ParseValue(value); err != nil {
		return err
	}
	_, err = a.cache.Add(ObjectType, name, value, req.GroupID, nil, nil)
	return err
}

func (a *Adapter) del(req *cfgtree.Request) error {
	name := req.Inst(NodeName)
	if _, err := ParseInstance(name); err != nil {
		return err
	}
	return a.cache.DeleteMark(ObjectType, name, nil, nil, req.GroupID, a.loadAttrs)
}

func (a *Adapter) list(req *cfgtree.Request) ([]string, error) {
	routes, err := a.nl.RouteListFiltered(netlink.FAMILY_ALL,
		&netlink.Route{Table: unix.RT_TABLE_UNSPEC}, netlink.RT_FILTER_TABLE)
	if err != nil {
		return nil, errcode.FromErrno(err, "failed to list routes")
	}

	seen := make(map[string]struct{}, len(routes))
	names := make([]string, 0, len(routes))
	for i := range routes {
		if routes[i].Table == unix.RT_TABLE_LOCAL {
			continue
		}
		name := a.fromNetlink(&routes[i]).InstanceName()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}

// loadAttrs populates a route object from the kernel route it refers to
func (a *Adapter) loadAttrs(obj *cache.Object) error {
	info, err := a.find(obj.Name)
	if err != nil {
		return err
	}

	attrs := make([][2]string, 0, len(Attributes))
	if info.Has(FlagMTU) {
		attrs = append(attrs, [2]string{AttrMTU, strconv.FormatUint(uint64(info.MTU), 10)})
	}
	if info.Has(FlagWin) {
		attrs = append(attrs, [2]string{AttrWin, strconv.FormatUint(uint64(info.Win), 10)})
	}
	if info.Has(FlagIRTT) {
		attrs = append(attrs, [2]string{AttrIRTT, strconv.FormatUint(uint64(info.IRTT), 10)})
	}
	if info.Has(FlagHoplimit) {
		attrs = append(attrs, [2]string{AttrHoplimit, strconv.FormatUint(uint64(info.Hoplimit), 10)})
	}
	if info.Has(FlagSrc) {
		attrs = append(attrs, [2]string{AttrSrc, info.Src.String()})
	}
	if info.Has(FlagDev) {
		attrs = append(attrs, [2]string{AttrDev, info.Dev})
	}
	attrs = append(attrs, [2]string{AttrType, info.Type.String()})
	for _, kv := range attrs {
		if err := a.cache.AttrSet(obj, kv[0], kv[1]); err != nil {
			return err
		}
	}
	if info.Has(FlagGateway) {
		obj.Value = info.Gateway.String()
	}
	return nil
}

func (a *Adapter) commit(gid uint32, oid cfgtree.OID) error {
	name := oid.Inst(NodeName)
	obj := a.cache.Find(ObjectType, name, gid)
	if obj == nil {
		a.log.Info("nothing to commit for route", "route", name, "group", gid)
		return nil
	}

	info, err := ParseObject(obj)
	action := obj.Action
	a.cache.Free(obj)
	if err != nil {
		return err
	}
	return a.apply(action, info)
}

func (a *Adapter) apply(action cache.Action, info *Info) error {
	r := &netlink.Route{
		Family:   info.Family,
		Dst:      info.DstNet(),
		Gw:       info.Gateway,
		Src:      info.Src,
		Priority: info.Metric,
		Tos:      info.Tos,
		Table:    info.Table,
		Type:     int(info.Type),
		MTU:      int(info.MTU),
		Window:   int(info.Win),
		Rtt:      int(info.IRTT),
		Hoplimit: int(info.Hoplimit),
	}
	if info.Has(FlagDev) {
		link, err := a.nl.LinkByName(info.Dev)
		if err != nil {
			return errcode.FromErrno(err, "failed to get link %s", info.Dev)
		}
		r.LinkIndex = link.Attrs().Index
	}
	switch {
	case info.Type == TypeLocal:
		r.Scope = netlink.SCOPE_HOST
	case info.Type == TypeUnicast && info.Gateway == nil && info.Has(FlagDev):
		r.Scope = netlink.SCOPE_LINK
	}

	a.log.V(2).Info("apply route", "action", action.String(), "route", info.InstanceName())
	var err error
	switch action {
	case cache.ActionCreate:
		err = a.nl.RouteAdd(r)
	case cache.ActionDelete:
		r.Scope = netlink.SCOPE_NOWHERE
		err = a.nl.RouteDel(r)
	default:
		err = a.nl.RouteReplace(r)
	}
	if err != nil {
		return errcode.FromErrno(err, "failed to %s route %s", action.String(), info.InstanceName())
	}
	return nil
}

// find returns the kernel route the instance name refers to
func (a *Adapter) find(name string) (*Info, error) {
	want, err := ParseInstance(name)
	if err != nil {
		return nil, err
	}
	routes, err := a.nl.RouteListFiltered(want.Family, &netlink.Route{Table: want.Table}, netlink.RT_FILTER_TABLE)
	if err != nil {
		return nil, errcode.FromErrno(err, "failed to list routes")
	}
	for i := range routes {
		r := &routes[i]
		if r.Priority != want.Metric || r.Tos != want.Tos {
			continue
		}
		ip, prefix := dstOf(r, want.Family)
		if prefix == want.Prefix && ip.Equal(want.Dst) {
			return a.fromNetlink(r), nil
		}
	}
	return nil, errcode.New(errcode.NotFound, "route %s", name)
}

func dstOf(r *netlink.Route, family int) (net.IP, int) {
	if r.Dst == nil {
		if family == unix.AF_INET6 {
			return net.IPv6zero, 0
		}
		return net.IPv4zero.To4(), 0
	}
	ones, _ := r.Dst.Mask.Size()
	return r.Dst.IP, ones
}

func (a *Adapter) fromNetlink(r *netlink.Route) *Info {
	family := r.Family
	if family != unix.AF_INET6 {
		family = unix.AF_INET
		if r.Dst != nil && r.Dst.IP.To4() == nil {
			family = unix.AF_INET6
		}
	}
	dst, prefix := dstOf(r, family)
	info := &Info{
		Family:   family,
		Dst:      dst,
		Prefix:   prefix,
		Metric:   r.Priority,
		Tos:      r.Tos,
		Table:    r.Table,
		Type:     Type(r.Type),
		MTU:      uint32(r.MTU),
		Win:      uint32(r.Window),
		IRTT:     uint32(r.Rtt),
		Hoplimit: uint32(r.Hoplimit),
	}
	if info.Type == 0 {
		info.Type = TypeUnicast
	}
	if r.Gw != nil && !r.Gw.IsUnspecified() {
		info.Gateway = r.Gw
		info.Flags |= FlagGateway
	}
	if r.Src != nil {
		info.Src = r.Src
		info.Flags |= FlagSrc
	}
	for _, f := range []struct {
		v    uint32
		flag Flags
	}{{info.MTU, FlagMTU}, {info.Win, FlagWin}, {info.IRTT, FlagIRTT}, {info.Hoplimit, FlagHoplimit}} {
		if f.v != 0 {
			info.Flags |= f.flag
		}
	}
	if r.LinkIndex > 0 {
		link, err := a.nl.LinkByIndex(r.LinkIndex)
		if err != nil {
			a.log.V(3).Info("failed to get route link", "index", r.LinkIndex, "error", err.Error())
		} else {
			info.Dev = link.Attrs().Name
			info.Flags |= FlagDev
		}
	}
	return info
}
