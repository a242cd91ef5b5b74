package ethtool

import (
	"strconv"
	"strings"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// linkModeNames are link mode names indexed by their ETHTOOL_LINK_MODE_*_BIT number
var linkModeNames = []string{
	"10baseT_Half",
	"10baseT_Full",
	"100baseT_Half",
	"100baseT_Full",
	"1000baseT_Half",
	"1000baseT_Full",
	"Autoneg",
	"TP",
	"AUI",
	"MII",
	"FIBRE",
	"BNC",
	"10000baseT_Full",
	"Pause",
	"Asym_Pause",
	"2500baseX_Full",
	"Backplane",
	"1000baseKX_Full",
	"10000baseKX4_Full",
	"10000baseKR_Full",
	"10000baseR_FEC",
	"20000baseMLD2_Full",
	"20000baseKR2_Full",
	"40000baseKR4_Full",
	"40000baseCR4_Full",
	"40000baseSR4_Full",
	"40000baseLR4_Full",
	"56000baseKR4_Full",
	"56000baseCR4_Full",
	"56000baseSR4_Full",
	"56000baseLR4_Full",
	"25000baseCR_Full",
	"25000baseKR_Full",
	"25000baseSR_Full",
	"50000baseCR2_Full",
	"50000baseKR2_Full",
	"100000baseKR4_Full",
	"100000baseSR4_Full",
	"100000baseCR4_Full",
	"100000baseLR4_ER4_Full",
	"50000baseSR2_Full",
	"1000baseX_Full",
	"10000baseCR_Full",
	"10000baseSR_Full",
	"10000baseLR_Full",
	"10000baseLRM_Full",
	"10000baseER_Full",
	"2500baseT_Full",
	"5000baseT_Full",
	"FEC_NONE",
	"FEC_RS",
	"FEC_BASER",
	"50000baseKR_Full",
	"50000baseSR_Full",
	"50000baseCR_Full",
	"50000baseLR_ER_FR_Full",
	"50000baseDR_Full",
	"100000baseKR2_Full",
	"100000baseSR2_Full",
	"100000baseCR2_Full",
	"100000baseLR2_ER2_FR2_Full",
	"100000baseDR2_Full",
	"200000baseKR4_Full",
	"200000baseSR4_Full",
	"200000baseLR4_ER4_FR4_Full",
	"200000baseDR4_Full",
	"200000baseCR4_Full",
	"100baseT1_Full",
	"1000baseT1_Full",
	"400000baseKR8_Full",
	"400000baseSR8_Full",
	"400000baseLR8_ER8_FR8_Full",
	"400000baseDR8_Full",
	"400000baseCR8_Full",
	"FEC_LLRS",
	"100000baseKR_Full",
	"100000baseSR_Full",
	"100000baseLR_ER_FR_Full",
	"100000baseCR_Full",
	"100000baseDR_Full",
	"200000baseKR2_Full",
	"200000baseSR2_Full",
	"200000baseLR2_ER2_FR2_Full",
	"200000baseDR2_Full",
	"200000baseCR2_Full",
	"400000baseKR4_Full",
	"400000baseSR4_Full",
	"400000baseLR4_ER4_FR4_Full",
	"400000baseDR4_Full",
	"400000baseCR4_Full",
	"100baseFX_Half",
	"100baseFX_Full",
}

// legacyModeBits is the number of modes the legacy 32-bit masks can carry
const legacyModeBits = 31

type linkMode struct {
	name string
	bit  uint32
	// legacy is the SUPPORTED_/ADVERTISED_ flag, zero if the mode has none
	legacy uint32
	speed  uint32
	duplex uint8
	// hasSpeed is false for modes which are not a speed, e.g. Pause
	hasSpeed bool
}

var linkModes = buildLinkModes()

func buildLinkModes() []linkMode {
	modes := make([]linkMode, 0, len(linkModeNames))
	for i, name := range linkModeNames {
		m := linkMode{name: name, bit: uint32(i)}
		if i < legacyModeBits {
			m.legacy = 1 << i
		}
		m.speed, m.duplex, m.hasSpeed = speedOfMode(name)
		modes = append(modes, m)
	}
	return modes
}

// speedOfMode extracts speed and duplex from names like 1000baseT_Full
func speedOfMode(name string) (uint32, uint8, bool) {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, types.DuplexUnknown, false
	}
	speed, err := strconv.ParseUint(name[:end], 10, 32)
	if err != nil {
		return 0, types.DuplexUnknown, false
	}
	duplex := types.DuplexFull
	if strings.HasSuffix(name, "_Half") {
		duplex = types.DuplexHalf
	}
	return uint32(speed), duplex, true
}

func lookupLinkMode(name string) (*linkMode, error) {
	for i := range linkModes {
		if linkModes[i].name == name {
			return &linkModes[i], nil
		}
	}
	return nil, errcode.New(errcode.NotFound, "unknown link mode %q", name)
}
