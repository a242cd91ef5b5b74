package types

// Cmd is an ethtool command carried in the first word of every request
type Cmd uint32

const (
	// ethtool commands, see linux/ethtool.h
	CmdGSet          Cmd = 0x00000001
	CmdSSet          Cmd = 0x00000002
	CmdGDrvInfo      Cmd = 0x00000003
	CmdNwayRst       Cmd = 0x00000009
	CmdGLink         Cmd = 0x0000000a
	CmdGCoalesce     Cmd = 0x0000000e
	CmdSCoalesce     Cmd = 0x0000000f
	CmdGRingParam    Cmd = 0x00000010
	CmdSRingParam    Cmd = 0x00000011
	CmdGPauseParam   Cmd = 0x00000012
	CmdSPauseParam   Cmd = 0x00000013
	CmdGStrings      Cmd = 0x0000001b
	CmdGPFlags       Cmd = 0x00000027
	CmdSPFlags       Cmd = 0x00000028
	CmdGRxClsRlCnt   Cmd = 0x0000002e
	CmdGRxClsRule    Cmd = 0x0000002f
	CmdGRxClsRlAll   Cmd = 0x00000030
	CmdSRxClsRlDel   Cmd = 0x00000031
	CmdSRxClsRlIns   Cmd = 0x00000032
	CmdReset         Cmd = 0x00000034
	CmdGSSetInfo     Cmd = 0x00000037
	CmdGFeatures     Cmd = 0x0000003a
	CmdSFeatures     Cmd = 0x0000003b
	CmdGChannels     Cmd = 0x0000003c
	CmdSChannels     Cmd = 0x0000003d
	CmdGEEE          Cmd = 0x00000044
	CmdSEEE          Cmd = 0x00000045
	CmdGRssh         Cmd = 0x00000046
	CmdSRssh         Cmd = 0x00000047
	CmdGLinkSettings Cmd = 0x0000004c
	CmdSLinkSettings Cmd = 0x0000004d
)

var cmdNames = map[Cmd]string{
	CmdGSet:          "ETHTOOL_GSET",
	CmdSSet:          "ETHTOOL_SSET",
	CmdGDrvInfo:      "ETHTOOL_GDRVINFO",
	CmdNwayRst:       "ETHTOOL_NWAY_RST",
	CmdGLink:         "ETHTOOL_GLINK",
	CmdGCoalesce:     "ETHTOOL_GCOALESCE",
	CmdSCoalesce:     "ETHTOOL_SCOALESCE",
	CmdGRingParam:    "ETHTOOL_GRINGPARAM",
	CmdSRingParam:    "ETHTOOL_SRINGPARAM",
	CmdGPauseParam:   "ETHTOOL_GPAUSEPARAM",
	CmdSPauseParam:   "ETHTOOL_SPAUSEPARAM",
	CmdGStrings:      "ETHTOOL_GSTRINGS",
	CmdGPFlags:       "ETHTOOL_GPFLAGS",
	CmdSPFlags:       "ETHTOOL_SPFLAGS",
	CmdGRxClsRlCnt:   "ETHTOOL_GRXCLSRLCNT",
	CmdGRxClsRule:    "ETHTOOL_GRXCLSRULE",
	CmdGRxClsRlAll:   "ETHTOOL_GRXCLSRLALL",
	CmdSRxClsRlDel:   "ETHTOOL_SRXCLSRLDEL",
	CmdSRxClsRlIns:   "ETHTOOL_SRXCLSRLINS",
	CmdReset:         "ETHTOOL_RESET",
	CmdGSSetInfo:     "ETHTOOL_GSSET_INFO",
	CmdGFeatures:     "ETHTOOL_GFEATURES",
	CmdSFeatures:     "ETHTOOL_SFEATURES",
	CmdGChannels:     "ETHTOOL_GCHANNELS",
	CmdSChannels:     "ETHTOOL_SCHANNELS",
	CmdGEEE:          "ETHTOOL_GEEE",
	CmdSEEE:          "ETHTOOL_SEEE",
	CmdGRssh:         "ETHTOOL_GRSSH",
	CmdSRssh:         "ETHTOOL_SRSSH",
	CmdGLinkSettings: "ETHTOOL_GLINKSETTINGS",
	CmdSLinkSettings: "ETHTOOL_SLINKSETTINGS",
}

// String returns the kernel name of the command
func (c Cmd) String() string {
	if s, ok := cmdNames[c]; ok {
		return s
	}
	return "ETHTOOL_UNKNOWN"
}

// StringSet identifies an ethtool string set
type StringSet uint32

const (
	StringSetTest         StringSet = 0
	StringSetStats        StringSet = 1
	StringSetPrivFlags    StringSet = 2
	StringSetFeatures     StringSet = 4
	StringSetRssHashFuncs StringSet = 5
)

// StringLen is the length of one entry of a string set (ETH_GSTRING_LEN)
const StringLen = 32

const (
	DuplexHalf    uint8 = 0x00
	DuplexFull    uint8 = 0x01
	DuplexUnknown uint8 = 0xff

	SpeedUnknown uint32 = 0xffffffff

	AutonegDisable uint8 = 0x00
	AutonegEnable  uint8 = 0x01
)

// Port types reported in settings
const (
	PortTP    uint8 = 0x00
	PortAUI   uint8 = 0x01
	PortBNC   uint8 = 0x02
	PortMII   uint8 = 0x03
	PortFibre uint8 = 0x04
	PortDA    uint8 = 0x05
	PortNone  uint8 = 0xef
	PortOther uint8 = 0xff
)

// LinkModeMasksMaxWords is the maximum number of 32-bit words of one link mode mask
const LinkModeMasksMaxWords = 10

// ResetAll resets all components of the device (ETH_RESET_ALL)
const ResetAll uint32 = 0xffffffff

// Flow types of Rx classification rules
const (
	FlowTCPv4  uint32 = 0x01
	FlowUDPv4  uint32 = 0x02
	FlowSCTPv4 uint32 = 0x03
	FlowAHESP4 uint32 = 0x04
	FlowTCPv6  uint32 = 0x05
	FlowUDPv6  uint32 = 0x06
	FlowSCTPv6 uint32 = 0x07
	FlowAHESP6 uint32 = 0x08
	FlowAHv4   uint32 = 0x09
	FlowESPv4  uint32 = 0x0a
	FlowAHv6   uint32 = 0x0b
	FlowESPv6  uint32 = 0x0c
	FlowIPv4   uint32 = 0x0d
	FlowIPv6   uint32 = 0x0e
	FlowEther  uint32 = 0x12

	// flow type flags
	FlowExt    uint32 = 0x80000000
	FlowMacExt uint32 = 0x40000000
	FlowRSS    uint32 = 0x20000000
)

// FlowTypeMask masks out flow type flags
const FlowTypeMask = ^(FlowExt | FlowMacExt | FlowRSS)

const (
	// RxClsFlowDisc is the ring cookie of a rule dropping matched packets
	RxClsFlowDisc uint64 = 0xffffffffffffffff

	RxClsLocSpecial uint32 = 0x80000000
	RxClsLocAny     uint32 = 0xffffffff
	RxClsLocFirst   uint32 = 0xfffffffe
	RxClsLocLast    uint32 = 0xfffffffd

	// RxNfcIPv4 is the ip_ver value of usrip4 rules
	RxNfcIPv4 uint8 = 1
)

// RxfhIndirNoChange tells the kernel to keep the indirection table
const RxfhIndirNoChange uint32 = 0xffffffff
