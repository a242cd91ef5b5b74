package ethtool

import (
	"k8s.io/utils/strings/slices"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

const linkSettingsType = "link_settings"

type modeMask int

const (
	maskSupported modeMask = iota
	maskAdvertising
	maskLpAdvertising
)

// noSetKinds are link kinds whose drivers cannot change link settings
var noSetKinds = []string{"vlan", "bond", "team", "ipvlan", "macvlan"}

// linkSettings holds either ETHTOOL_GLINKSETTINGS or ETHTOOL_GSET data
type linkSettings struct {
	useNew       bool
	setSupported bool
	modern       types.LinkSettings
	legacy       types.LegacySettings
}

func (a *Agent) linkSettingsMaterialize(obj *cache.Object) error {
	ls, err := a.loadLinkSettings(obj.Name)
	if err != nil {
		return err
	}
	obj.Payload = ls
	return nil
}

func (a *Agent) loadLinkSettings(ifName string) (*linkSettings, error) {
	ls := &linkSettings{}

	probe, err := a.eth.GetLinkSettings(ifName, 0)
	if err == nil {
		if probe.LinkModeMasksNwords >= 0 {
			return nil, errcode.New(errcode.Invalid, "%s: unexpected link mode masks size %d on %s",
				types.CmdGLinkSettings, probe.LinkModeMasksNwords, ifName)
		}
		nwords := -int(probe.LinkModeMasksNwords)
		if nwords > types.LinkModeMasksMaxWords {
			return nil, errcode.New(errcode.Overflow, "%s: link mode masks of %d words on %s",
				types.CmdGLinkSettings, nwords, ifName)
		}
		full, err := a.eth.GetLinkSettings(ifName, int8(nwords))
		if err == nil {
			ls.useNew = true
			ls.modern = *full
			ls.setSupported = a.modernSetSupported(ifName)
			return ls, nil
		}
		a.log.V(4).Info("failed to read link settings, falling back to legacy request",
			"interface", ifName, "error", err.Error())
	} else {
		a.log.V(4).Info("link settings request is not available, falling back to legacy request",
			"interface", ifName, "error", err.Error())
	}

	legacy, err := a.eth.GetLegacySettings(ifName)
	if err != nil {
		return nil, a.native(err, types.CmdGSet, ifName)
	}
	ls.legacy = *legacy
	ls.setSupported = a.legacySetSupported(ifName)
	return ls, nil
}

// modernSetSupported issues a request the kernel rejects before applying
// anything: drivers without set support fail with EOPNOTSUPP first
func (a *Agent) modernSetSupported(ifName string) bool {
	err := a.eth.SetLinkSettings(ifName, &types.LinkSettings{})
	return !errcode.Is(err, errcode.NotSupported)
}

func (a *Agent) legacySetSupported(ifName string) bool {
	link, err := a.nl.LinkByName(ifName)
	if err != nil {
		a.log.V(4).Info("failed to get link kind", "interface", ifName, "error", err.Error())
		return true
	}
	return !slices.Contains(noSetKinds, link.Type())
}

func (ls *linkSettings) autoneg() bool {
	if ls.useNew {
		return ls.modern.Autoneg == types.AutonegEnable
	}
	return ls.legacy.Autoneg == types.AutonegEnable
}

func (ls *linkSettings) setAutoneg(on bool) {
	v := types.AutonegDisable
	if on {
		v = types.AutonegEnable
	}
	if ls.useNew {
		ls.modern.Autoneg = v
	} else {
		ls.legacy.Autoneg = v
	}
}

func (ls *linkSettings) speed() uint32 {
	if ls.useNew {
		return ls.modern.Speed
	}
	return ls.legacy.GetSpeed()
}

func (ls *linkSettings) setSpeed(speed uint32) {
	if ls.useNew {
		ls.modern.Speed = speed
	} else {
		ls.legacy.SetSpeed(speed)
	}
}

func (ls *linkSettings) duplex() uint8 {
	if ls.useNew {
		return ls.modern.Duplex
	}
	return ls.legacy.Duplex
}

func (ls *linkSettings) setDuplex(duplex uint8) {
	if ls.useNew {
		ls.modern.Duplex = duplex
	} else {
		ls.legacy.Duplex = duplex
	}
}

func (ls *linkSettings) port() uint8 {
	if ls.useNew {
		return ls.modern.Port
	}
	return ls.legacy.Port
}

func (ls *linkSettings) legacyMask(mask modeMask) *uint32 {
	switch mask {
	case maskSupported:
		return &ls.legacy.Supported
	case maskAdvertising:
		return &ls.legacy.Advertising
	}
	return &ls.legacy.LpAdvertising
}

// modernWord returns the mask word holding mode m, or nil if the masks
// reported by the kernel are too short
func (ls *linkSettings) modernWord(mask modeMask, m *linkMode) *uint32 {
	nwords := int(ls.modern.LinkModeMasksNwords)
	word := int(m.bit / 32)
	if nwords <= 0 || word >= nwords {
		return nil
	}
	return &ls.modern.LinkModeMasks[int(mask)*nwords+word]
}

// hasMode never fails: modes unknown to the kernel view are reported as unset
func (ls *linkSettings) hasMode(mask modeMask, m *linkMode) bool {
	if ls.useNew {
		w := ls.modernWord(mask, m)
		return w != nil && *w&(1<<(m.bit%32)) != 0
	}
	return m.legacy != 0 && *ls.legacyMask(mask)&m.legacy != 0
}

func (ls *linkSettings) setMode(mask modeMask, m *linkMode, on bool) error {
	var w *uint32
	var bit uint32
	if ls.useNew {
		if w = ls.modernWord(mask, m); w == nil {
			return errcode.New(errcode.Range, "link mode %s does not fit link mode masks", m.name)
		}
		bit = 1 << (m.bit % 32)
	} else {
		if m.legacy == 0 {
			return errcode.New(errcode.NotFound, "link mode %s is not known to legacy settings", m.name)
		}
		w = ls.legacyMask(mask)
		bit = m.legacy
	}
	if on {
		*w |= bit
	} else {
		*w &^= bit
	}
	return nil
}

// modes returns names of modes set in mask in table order
func (ls *linkSettings) modes(mask modeMask) []string {
	names := []string{}
	for i := range linkModes {
		if ls.hasMode(mask, &linkModes[i]) {
			names = append(names, linkModes[i].name)
		}
	}
	return names
}

// maxSpeed returns the best supported speed and duplex, preferring higher
// speed and then full duplex
func (ls *linkSettings) maxSpeed() (uint32, uint8, bool) {
	var speed uint32
	duplex := types.DuplexUnknown
	found := false
	for i := range linkModes {
		m := &linkModes[i]
		if !m.hasSpeed || !ls.hasMode(maskSupported, m) {
			continue
		}
		if !found || m.speed > speed || (m.speed == speed && m.duplex == types.DuplexFull) {
			speed = m.speed
			duplex = m.duplex
			found = true
		}
	}
	return speed, duplex, found
}

func (a *Agent) applyLinkSettings(ifName string, ls *linkSettings) error {
	if ls.useNew {
		return a.native(a.eth.SetLinkSettings(ifName, &ls.modern), types.CmdSLinkSettings, ifName)
	}
	return a.native(a.eth.SetLegacySettings(ifName, &ls.legacy), types.CmdSSet, ifName)
}
