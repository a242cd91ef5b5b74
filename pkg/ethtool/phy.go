package ethtool

import (
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// PHY link states reported by phy/state
const (
	PhyStateUnknown = -1
	PhyStateDown    = 0
	PhyStateUp      = 1
)

var duplexNames = map[uint8]string{
	types.DuplexHalf:    "half",
	types.DuplexFull:    "full",
	types.DuplexUnknown: "unknown",
}

var portNames = map[uint8]string{
	types.PortTP:    "tp",
	types.PortAUI:   "aui",
	types.PortBNC:   "bnc",
	types.PortMII:   "mii",
	types.PortFibre: "fibre",
	types.PortDA:    "da",
	types.PortNone:  "none",
	types.PortOther: "other",
}

func (a *Agent) phyNode() *cfgtree.Node {
	roLeaf := func(name string, get cfgtree.GetFunc) *cfgtree.Node {
		return cfgtree.NewNodeBuilder(name).WithGet(get).Build()
	}
	return cfgtree.NewNodeBuilder("phy").
		WithList(a.phyProbe).
		WithCommit(a.phyCommit).
		WithChildren(
			cfgtree.NewNodeBuilder("autoneg").WithGet(a.phyAutonegGet).WithSet(a.phyAutonegSet).Build(),
			cfgtree.NewNodeBuilder("speed_admin").
				WithGet(func(req *cfgtree.Request) (string, error) { return a.phySpeedGet(req, true) }).
				WithSet(a.phySpeedSet).
				Build(),
			roLeaf("speed_oper", func(req *cfgtree.Request) (string, error) { return a.phySpeedGet(req, false) }),
			cfgtree.NewNodeBuilder("duplex_admin").
				WithGet(func(req *cfgtree.Request) (string, error) { return a.phyDuplexGet(req, true) }).
				WithSet(a.phyDuplexSet).
				Build(),
			roLeaf("duplex_oper", func(req *cfgtree.Request) (string, error) { return a.phyDuplexGet(req, false) }),
			roLeaf("port", a.phyPortGet),
			cfgtree.NewNodeBuilder("mode").
				WithList(func(req *cfgtree.Request) ([]string, error) { return a.phyModeList(req, maskSupported) }).
				WithGet(a.phyModeGet).
				WithSet(a.phyModeSet).
				Build(),
			cfgtree.NewNodeBuilder("lp_advertised").
				WithList(func(req *cfgtree.Request) ([]string, error) { return a.phyModeList(req, maskLpAdvertising) }).
				Build(),
			roLeaf("state", a.phyStateGet),
			roLeaf("set_supported", a.phySetSupportedGet),
		).
		Build()
}

func (a *Agent) linkSettingsShadow(req *cfgtree.Request) (*linkSettings, error) {
	obj, err := a.shadow(linkSettingsType, req.IfName(), req.GroupID, a.linkSettingsMaterialize)
	if err != nil {
		return nil, err
	}
	return obj.Payload.(*linkSettings), nil
}

func (a *Agent) linkSettingsForSet(req *cfgtree.Request) (*linkSettings, error) {
	obj, err := a.shadowForSet(linkSettingsType, req.IfName(), req.GroupID, a.linkSettingsMaterialize)
	if err != nil {
		return nil, err
	}
	return obj.Payload.(*linkSettings), nil
}

func (a *Agent) phyProbe(req *cfgtree.Request) ([]string, error) {
	if _, err := a.loadLinkSettings(req.IfName()); err != nil {
		return nil, err
	}
	return []string{""}, nil
}

func (a *Agent) phyAutonegGet(req *cfgtree.Request) (string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	return formatBool(ls.autoneg()), nil
}

func (a *Agent) phyAutonegSet(req *cfgtree.Request, value string) error {
	on, err := parseBool(value)
	if err != nil {
		return err
	}
	ls, err := a.linkSettingsForSet(req)
	if err != nil {
		return err
	}
	ls.setAutoneg(on)
	return nil
}

// adminUnknown tells whether administrative speed and duplex are volatile:
// they follow autonegotiation or cannot be changed at all
func (ls *linkSettings) adminUnknown() bool {
	return ls.autoneg() || !ls.setSupported
}

func (a *Agent) phySpeedGet(req *cfgtree.Request, admin bool) (string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	speed := ls.speed()
	if admin {
		if ls.adminUnknown() {
			speed = types.SpeedUnknown
		} else if speed == types.SpeedUnknown || speed == 0 {
			// report something which can be set back
			if best, _, ok := ls.maxSpeed(); ok {
				speed = best
			}
		}
	}
	if speed == types.SpeedUnknown {
		return "-1", nil
	}
	return strconv.FormatUint(uint64(speed), 10), nil
}

func (a *Agent) phySpeedSet(req *cfgtree.Request, value string) error {
	speed := types.SpeedUnknown
	if value != "-1" {
		v, err := parseUint32(value)
		if err != nil {
			return err
		}
		speed = v
	}
	ls, err := a.linkSettingsForSet(req)
	if err != nil {
		return err
	}
	ls.setSpeed(speed)
	return nil
}

func formatDuplex(d uint8) (string, error) {
	name, ok := duplexNames[d]
	if !ok {
		return "", errcode.New(errcode.Invalid, "unknown duplex value %d", d)
	}
	return name, nil
}

func (a *Agent) phyDuplexGet(req *cfgtree.Request, admin bool) (string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	duplex := ls.duplex()
	if admin {
		if ls.adminUnknown() {
			duplex = types.DuplexUnknown
		} else if duplex == types.DuplexUnknown {
			if _, best, ok := ls.maxSpeed(); ok {
				duplex = best
			}
		}
	}
	return formatDuplex(duplex)
}

func (a *Agent) phyDuplexSet(req *cfgtree.Request, value string) error {
	duplex := uint8(0)
	found := false
	for d, name := range duplexNames {
		if name == value {
			duplex, found = d, true
			break
		}
	}
	if !found {
		return errcode.New(errcode.Invalid, "duplex value %q is not supported", value)
	}
	ls, err := a.linkSettingsForSet(req)
	if err != nil {
		return err
	}
	ls.setDuplex(duplex)
	return nil
}

func (a *Agent) phyPortGet(req *cfgtree.Request) (string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	name, ok := portNames[ls.port()]
	if !ok {
		return "", errcode.New(errcode.Invalid, "unknown port value %d", ls.port())
	}
	return name, nil
}

func (a *Agent) phyModeList(req *cfgtree.Request, mask modeMask) ([]string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return nil, err
	}
	return ls.modes(mask), nil
}

func (a *Agent) phyModeGet(req *cfgtree.Request) (string, error) {
	m, err := lookupLinkMode(req.Inst("mode"))
	if err != nil {
		return "", err
	}
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	return formatBool(ls.hasMode(maskAdvertising, m)), nil
}

func (a *Agent) phyModeSet(req *cfgtree.Request, value string) error {
	on, err := parseBool(value)
	if err != nil {
		return err
	}
	m, err := lookupLinkMode(req.Inst("mode"))
	if err != nil {
		return err
	}
	ls, err := a.linkSettingsForSet(req)
	if err != nil {
		return err
	}
	return ls.setMode(maskAdvertising, m, on)
}

func (a *Agent) phyStateGet(req *cfgtree.Request) (string, error) {
	ifName := req.IfName()
	up, err := a.eth.GetLink(ifName)
	if err != nil {
		// inactive interfaces may report ENODEV
		if errno := errcode.Errno(err); errno == unix.EOPNOTSUPP || errno == unix.ENODEV {
			return strconv.Itoa(PhyStateUnknown), nil
		}
		return "", a.native(err, types.CmdGLink, ifName)
	}
	if up != 0 {
		return strconv.Itoa(PhyStateUp), nil
	}
	return strconv.Itoa(PhyStateDown), nil
}

func (a *Agent) phySetSupportedGet(req *cfgtree.Request) (string, error) {
	ls, err := a.linkSettingsShadow(req)
	if err != nil {
		return "", err
	}
	return formatBool(ls.setSupported), nil
}

func (a *Agent) phyCommit(gid uint32, oid cfgtree.OID) error {
	ifName := oid.Inst(InterfaceNode)
	autoneg := false
	err := a.commitShadow(linkSettingsType, ifName, gid, func(obj *cache.Object) error {
		ls := obj.Payload.(*linkSettings)
		autoneg = ls.autoneg()
		return a.applyLinkSettings(ifName, ls)
	})
	if err != nil {
		return err
	}
	if autoneg {
		if err := a.eth.RestartAutoneg(ifName); err != nil {
			a.log.V(2).Info("failed to restart autonegotiation", "interface", ifName, "error", err.Error())
		}
	}
	return nil
}
