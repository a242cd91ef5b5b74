package ethtool

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

var flowTypeNames = map[uint32]string{
	types.FlowTCPv4:  "tcp_v4",
	types.FlowUDPv4:  "udp_v4",
	types.FlowSCTPv4: "sctp_v4",
	types.FlowAHv4:   "ah_v4",
	types.FlowESPv4:  "esp_v4",
	types.FlowIPv4:   "ipv4_user",
	types.FlowTCPv6:  "tcp_v6",
	types.FlowUDPv6:  "udp_v6",
	types.FlowSCTPv6: "sctp_v6",
	types.FlowAHv6:   "ah_v6",
	types.FlowESPv6:  "esp_v6",
	types.FlowIPv6:   "ipv6_user",
	types.FlowEther:  "ether",
}

func formatFlowType(ft uint32) (string, error) {
	if ft == 0 {
		return "", nil
	}
	if name, ok := flowTypeNames[ft]; ok {
		return name, nil
	}
	return "", errcode.New(errcode.Invalid, "unknown flow type %#x", ft)
}

func parseFlowType(s string) (uint32, error) {
	for ft, name := range flowTypeNames {
		if name == s {
			return ft, nil
		}
	}
	return 0, errcode.New(errcode.Invalid, "unknown flow type %q", s)
}

func isIPv6Flow(ft uint32) bool {
	switch ft {
	case types.FlowTCPv6, types.FlowUDPv6, types.FlowSCTPv6, types.FlowAHv6, types.FlowESPv6, types.FlowIPv6:
		return true
	}
	return false
}

// ruleFields is one bank (values or masks) of a flow specification.
// Numeric fields are kept in host order, addresses in network order.
type ruleFields struct {
	srcMAC      [6]byte
	dstMAC      [6]byte
	etherType   uint32
	vlanTPID    uint32
	vlanTCI     uint32
	data0       uint32
	data1       uint32
	srcL3       [16]byte
	dstL3       [16]byte
	srcPort     uint32
	dstPort     uint32
	tosOrTClass uint32
	spi         uint32
	l4Bytes     uint32
	l4Proto     uint32
}

type flowFieldKind int

const (
	kindUint flowFieldKind = iota
	kindMAC
	kindIP
)

type flowField struct {
	name string
	kind flowFieldKind
	bits int
	num  func(f *ruleFields) *uint32
	mac  func(f *ruleFields) *[6]byte
	ip   func(f *ruleFields) *[16]byte
	// ext fields live in ethtool_flow_ext and apply to every flow type
	ext bool
}

func uintFlowField(name string, bits int, ext bool, num func(f *ruleFields) *uint32) flowField {
	return flowField{name: name, kind: kindUint, bits: bits, num: num, ext: ext}
}

var flowFields = []flowField{
	{name: "src_mac", kind: kindMAC, mac: func(f *ruleFields) *[6]byte { return &f.srcMAC }},
	{name: "dst_mac", kind: kindMAC, ext: true, mac: func(f *ruleFields) *[6]byte { return &f.dstMAC }},
	uintFlowField("ether_type", 16, false, func(f *ruleFields) *uint32 { return &f.etherType }),
	uintFlowField("vlan_tpid", 16, true, func(f *ruleFields) *uint32 { return &f.vlanTPID }),
	uintFlowField("vlan_tci", 16, true, func(f *ruleFields) *uint32 { return &f.vlanTCI }),
	uintFlowField("data0", 32, true, func(f *ruleFields) *uint32 { return &f.data0 }),
	uintFlowField("data1", 32, true, func(f *ruleFields) *uint32 { return &f.data1 }),
	{name: "src_l3_addr", kind: kindIP, ip: func(f *ruleFields) *[16]byte { return &f.srcL3 }},
	{name: "dst_l3_addr", kind: kindIP, ip: func(f *ruleFields) *[16]byte { return &f.dstL3 }},
	uintFlowField("src_port", 16, false, func(f *ruleFields) *uint32 { return &f.srcPort }),
	uintFlowField("dst_port", 16, false, func(f *ruleFields) *uint32 { return &f.dstPort }),
	uintFlowField("tos_or_tclass", 8, false, func(f *ruleFields) *uint32 { return &f.tosOrTClass }),
	uintFlowField("spi", 32, false, func(f *ruleFields) *uint32 { return &f.spi }),
	uintFlowField("l4_4_bytes", 32, false, func(f *ruleFields) *uint32 { return &f.l4Bytes }),
	uintFlowField("l4_proto", 8, false, func(f *ruleFields) *uint32 { return &f.l4Proto }),
}

// fields carried by flow union of each flow type, ext fields excluded
var flowTypeFields = map[uint32][]string{
	types.FlowTCPv4:  {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowUDPv4:  {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowSCTPv4: {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowAHv4:   {"src_l3_addr", "dst_l3_addr", "spi", "tos_or_tclass"},
	types.FlowESPv4:  {"src_l3_addr", "dst_l3_addr", "spi", "tos_or_tclass"},
	types.FlowIPv4:   {"src_l3_addr", "dst_l3_addr", "l4_4_bytes", "tos_or_tclass", "l4_proto"},
	types.FlowTCPv6:  {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowUDPv6:  {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowSCTPv6: {"src_l3_addr", "dst_l3_addr", "src_port", "dst_port", "tos_or_tclass"},
	types.FlowAHv6:   {"src_l3_addr", "dst_l3_addr", "spi", "tos_or_tclass"},
	types.FlowESPv6:  {"src_l3_addr", "dst_l3_addr", "spi", "tos_or_tclass"},
	types.FlowIPv6:   {"src_l3_addr", "dst_l3_addr", "l4_4_bytes", "tos_or_tclass", "l4_proto"},
	types.FlowEther:  {"src_mac", "dst_mac", "ether_type"},
}

func lookupFlowField(name string) (*flowField, error) {
	for i := range flowFields {
		if flowFields[i].name == name {
			return &flowFields[i], nil
		}
	}
	return nil, errcode.New(errcode.NotFound, "unknown flow field %q", name)
}

func (f *flowField) appliesTo(ft uint32) bool {
	if f.ext {
		return true
	}
	for _, name := range flowTypeFields[ft] {
		if name == f.name {
			return true
		}
	}
	return false
}

// fieldFromOID returns the flow field addressed by oid and whether its mask
// is addressed, e.g. .../flow_spec:/dst_port:/mask:
func fieldFromOID(oid cfgtree.OID) (string, bool, error) {
	if len(oid) < 2 {
		return "", false, errcode.New(errcode.NotFound, "oid %s is too short", oid)
	}
	last := oid.Last()
	if last.Name == "mask" {
		return oid[len(oid)-2].Name, true, nil
	}
	return last.Name, false, nil
}

func formatMAC(mac [6]byte) string {
	return net.HardwareAddr(mac[:]).String()
}

func parseMAC(s string) ([6]byte, error) {
	var mac [6]byte
	parts := strings.Split(s, ":")
	if len(parts) != len(mac) {
		return mac, errcode.New(errcode.Invalid, "invalid MAC address %q", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil || len(p) > 2 {
			return mac, errcode.New(errcode.Invalid, "invalid MAC address %q", s)
		}
		mac[i] = byte(v)
	}
	return mac, nil
}

func formatL3(addr [16]byte, ft uint32) string {
	if isIPv6Flow(ft) {
		return net.IP(addr[:]).String()
	}
	return net.IP(addr[:4]).String()
}

func parseL3(s string, ft uint32) ([16]byte, error) {
	var addr [16]byte
	ip := net.ParseIP(s)
	if ip == nil {
		return addr, errcode.New(errcode.Invalid, "invalid IP address %q", s)
	}
	if isIPv6Flow(ft) {
		if !strings.Contains(s, ":") {
			return addr, errcode.New(errcode.Invalid, "%q is not an IPv6 address", s)
		}
		copy(addr[:], ip.To16())
		return addr, nil
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return addr, errcode.New(errcode.Invalid, "%q is not an IPv4 address", s)
	}
	copy(addr[:], ip4)
	return addr, nil
}

func (f *flowField) format(bank *ruleFields, ft uint32) string {
	switch f.kind {
	case kindMAC:
		return formatMAC(*f.mac(bank))
	case kindIP:
		return formatL3(*f.ip(bank), ft)
	}
	return strconv.FormatUint(uint64(*f.num(bank)), 10)
}

func (f *flowField) parse(bank *ruleFields, ft uint32, value string) error {
	switch f.kind {
	case kindMAC:
		mac, err := parseMAC(value)
		if err != nil {
			return err
		}
		*f.mac(bank) = mac
	case kindIP:
		addr, err := parseL3(value, ft)
		if err != nil {
			return err
		}
		*f.ip(bank) = addr
	default:
		v, err := strconv.ParseUint(value, 10, f.bits)
		if err != nil {
			return errcode.New(errcode.Invalid, "invalid %d-bit value %q of %s", f.bits, value, f.name)
		}
		*f.num(bank) = uint32(v)
	}
	return nil
}

// rxRule is a shadow of one Rx classification rule
type rxRule struct {
	location   uint32
	flowType   uint32
	rxQueue    uint64
	rssContext int64
	values     ruleFields
	masks      ruleFields
}

func formatRxQueue(q uint64) string {
	if q == types.RxClsFlowDisc {
		return "-1"
	}
	return strconv.FormatUint(q, 10)
}

func parseRxQueue(s string) (uint64, error) {
	if s == "-1" {
		return types.RxClsFlowDisc, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errcode.New(errcode.Invalid, "invalid Rx queue %q", s)
	}
	return v, nil
}

func isSpecialLocation(loc uint32) bool {
	return loc == types.RxClsLocAny || loc == types.RxClsLocFirst || loc == types.RxClsLocLast
}

func parseLocation(s string) (uint32, error) {
	switch s {
	case "any":
		return types.RxClsLocAny, nil
	case "first":
		return types.RxClsLocFirst, nil
	case "last":
		return types.RxClsLocLast, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errcode.New(errcode.Invalid, "invalid rule location %q", s)
	}
	return uint32(v), nil
}

func be16(b []byte, v uint32) { binary.BigEndian.PutUint16(b, uint16(v)) }
func be32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }

// unionToNative fills ethtool_flow_union of flow type ft from bank
func unionToNative(ft uint32, bank *ruleFields, mask bool, u *[types.FlowUnionLen]byte) error {
	switch ft {
	case types.FlowTCPv4, types.FlowUDPv4, types.FlowSCTPv4:
		copy(u[types.OffIP4Src:], bank.srcL3[:4])
		copy(u[types.OffIP4Dst:], bank.dstL3[:4])
		be16(u[types.OffIP4PSrc:], bank.srcPort)
		be16(u[types.OffIP4PDst:], bank.dstPort)
		u[types.OffIP4Tos] = byte(bank.tosOrTClass)
	case types.FlowAHv4, types.FlowESPv4:
		copy(u[types.OffIP4Src:], bank.srcL3[:4])
		copy(u[types.OffIP4Dst:], bank.dstL3[:4])
		be32(u[types.OffIP4SPI:], bank.spi)
		u[types.OffIP4Tos] = byte(bank.tosOrTClass)
	case types.FlowIPv4:
		copy(u[types.OffIP4Src:], bank.srcL3[:4])
		copy(u[types.OffIP4Dst:], bank.dstL3[:4])
		be32(u[types.OffIP4L4:], bank.l4Bytes)
		u[types.OffIP4Tos] = byte(bank.tosOrTClass)
		// ip_ver and proto masks must be zero
		if !mask {
			u[types.OffIP4IPVer] = types.RxNfcIPv4
			u[types.OffIP4Proto] = byte(bank.l4Proto)
		}
	case types.FlowTCPv6, types.FlowUDPv6, types.FlowSCTPv6:
		copy(u[types.OffIP6Src:], bank.srcL3[:])
		copy(u[types.OffIP6Dst:], bank.dstL3[:])
		be16(u[types.OffIP6PSrc:], bank.srcPort)
		be16(u[types.OffIP6PDst:], bank.dstPort)
		u[types.OffIP6TClass] = byte(bank.tosOrTClass)
	case types.FlowAHv6, types.FlowESPv6:
		copy(u[types.OffIP6Src:], bank.srcL3[:])
		copy(u[types.OffIP6Dst:], bank.dstL3[:])
		be32(u[types.OffIP6SPI:], bank.spi)
		u[types.OffIP6TClass] = byte(bank.tosOrTClass)
	case types.FlowIPv6:
		copy(u[types.OffIP6Src:], bank.srcL3[:])
		copy(u[types.OffIP6Dst:], bank.dstL3[:])
		be32(u[types.OffIP6L4:], bank.l4Bytes)
		u[types.OffIP6TClass] = byte(bank.tosOrTClass)
		u[types.OffIP6L4Proto] = byte(bank.l4Proto)
	case types.FlowEther:
		copy(u[types.OffEthDst:], bank.dstMAC[:])
		copy(u[types.OffEthSrc:], bank.srcMAC[:])
		be16(u[types.OffEthProto:], bank.etherType)
	default:
		return errcode.New(errcode.Invalid, "flow type %#x is not supported", ft)
	}
	return nil
}

func unionFromNative(ft uint32, u *[types.FlowUnionLen]byte, bank *ruleFields) {
	u16 := func(off int) uint32 { return uint32(binary.BigEndian.Uint16(u[off:])) }
	u32 := func(off int) uint32 { return binary.BigEndian.Uint32(u[off:]) }
	switch ft {
	case types.FlowTCPv4, types.FlowUDPv4, types.FlowSCTPv4:
		copy(bank.srcL3[:4], u[types.OffIP4Src:])
		copy(bank.dstL3[:4], u[types.OffIP4Dst:])
		bank.srcPort = u16(types.OffIP4PSrc)
		bank.dstPort = u16(types.OffIP4PDst)
		bank.tosOrTClass = uint32(u[types.OffIP4Tos])
	case types.FlowAHv4, types.FlowESPv4:
		copy(bank.srcL3[:4], u[types.OffIP4Src:])
		copy(bank.dstL3[:4], u[types.OffIP4Dst:])
		bank.spi = u32(types.OffIP4SPI)
		bank.tosOrTClass = uint32(u[types.OffIP4Tos])
	case types.FlowIPv4:
		copy(bank.srcL3[:4], u[types.OffIP4Src:])
		copy(bank.dstL3[:4], u[types.OffIP4Dst:])
		bank.l4Bytes = u32(types.OffIP4L4)
		bank.tosOrTClass = uint32(u[types.OffIP4Tos])
		bank.l4Proto = uint32(u[types.OffIP4Proto])
	case types.FlowTCPv6, types.FlowUDPv6, types.FlowSCTPv6:
		copy(bank.srcL3[:], u[types.OffIP6Src:types.OffIP6Src+16])
		copy(bank.dstL3[:], u[types.OffIP6Dst:types.OffIP6Dst+16])
		bank.srcPort = u16(types.OffIP6PSrc)
		bank.dstPort = u16(types.OffIP6PDst)
		bank.tosOrTClass = uint32(u[types.OffIP6TClass])
	case types.FlowAHv6, types.FlowESPv6:
		copy(bank.srcL3[:], u[types.OffIP6Src:types.OffIP6Src+16])
		copy(bank.dstL3[:], u[types.OffIP6Dst:types.OffIP6Dst+16])
		bank.spi = u32(types.OffIP6SPI)
		bank.tosOrTClass = uint32(u[types.OffIP6TClass])
	case types.FlowIPv6:
		copy(bank.srcL3[:], u[types.OffIP6Src:types.OffIP6Src+16])
		copy(bank.dstL3[:], u[types.OffIP6Dst:types.OffIP6Dst+16])
		bank.l4Bytes = u32(types.OffIP6L4)
		bank.tosOrTClass = uint32(u[types.OffIP6TClass])
		bank.l4Proto = uint32(u[types.OffIP6L4Proto])
	case types.FlowEther:
		copy(bank.dstMAC[:], u[types.OffEthDst:types.OffEthDst+6])
		copy(bank.srcMAC[:], u[types.OffEthSrc:types.OffEthSrc+6])
		bank.etherType = u16(types.OffEthProto)
	}
}

func (f *ruleFields) hasExt() bool {
	return f.vlanTPID != 0 || f.vlanTCI != 0 || f.data0 != 0 || f.data1 != 0
}

func (f *ruleFields) hasMACExt() bool {
	return f.dstMAC != [6]byte{}
}

func extToNative(bank *ruleFields, ext, macExt bool, e *[types.FlowExtLen]byte) {
	if macExt {
		copy(e[types.OffExtHDest:], bank.dstMAC[:])
	}
	if ext {
		be16(e[types.OffExtVlanEtype:], bank.vlanTPID)
		be16(e[types.OffExtVlanTCI:], bank.vlanTCI)
		be32(e[types.OffExtData0:], bank.data0)
		be32(e[types.OffExtData1:], bank.data1)
	}
}

func extFromNative(e *[types.FlowExtLen]byte, ext, macExt bool, bank *ruleFields) {
	if macExt {
		copy(bank.dstMAC[:], e[types.OffExtHDest:types.OffExtHDest+6])
	}
	if ext {
		bank.vlanTPID = uint32(binary.BigEndian.Uint16(e[types.OffExtVlanEtype:]))
		bank.vlanTCI = uint32(binary.BigEndian.Uint16(e[types.OffExtVlanTCI:]))
		bank.data0 = binary.BigEndian.Uint32(e[types.OffExtData0:])
		bank.data1 = binary.BigEndian.Uint32(e[types.OffExtData1:])
	}
}

// toNative builds the SRXCLSRLINS request of the rule
func (r *rxRule) toNative() (*types.RxNFC, error) {
	nfc := &types.RxNFC{}
	fs := &nfc.FS

	fs.Location = r.location
	if isSpecialLocation(r.location) {
		fs.Location |= types.RxClsLocSpecial
	}
	fs.FlowType = r.flowType
	fs.RingCookie = r.rxQueue
	if r.rssContext >= 0 {
		fs.FlowType |= types.FlowRSS
		nfc.RuleCnt = uint32(r.rssContext)
	}

	if err := unionToNative(r.flowType, &r.values, false, &fs.HU); err != nil {
		return nil, err
	}
	if err := unionToNative(r.flowType, &r.masks, true, &fs.MU); err != nil {
		return nil, err
	}

	ext := r.values.hasExt() || r.masks.hasExt()
	macExt := r.flowType != types.FlowEther && (r.values.hasMACExt() || r.masks.hasMACExt())
	if ext {
		fs.FlowType |= types.FlowExt
	}
	if macExt {
		fs.FlowType |= types.FlowMacExt
	}
	extToNative(&r.values, ext, macExt, &fs.HExt)
	extToNative(&r.masks, ext, macExt, &fs.MExt)
	nfc.FlowType = fs.FlowType
	return nfc, nil
}

// rxRuleFromNative converts a GRXCLSRULE reply
func rxRuleFromNative(nfc *types.RxNFC) *rxRule {
	fs := &nfc.FS
	r := &rxRule{
		location:   fs.Location,
		flowType:   fs.FlowType & types.FlowTypeMask,
		rxQueue:    fs.RingCookie,
		rssContext: -1,
	}
	if fs.FlowType&types.FlowRSS != 0 {
		r.rssContext = int64(nfc.RuleCnt)
	}
	unionFromNative(r.flowType, &fs.HU, &r.values)
	unionFromNative(r.flowType, &fs.MU, &r.masks)
	ext := fs.FlowType&types.FlowExt != 0
	macExt := fs.FlowType&types.FlowMacExt != 0
	extFromNative(&fs.HExt, ext, macExt, &r.values)
	extFromNative(&fs.MExt, ext, macExt, &r.masks)
	return r
}

func (r *rxRule) String() string {
	ft, _ := formatFlowType(r.flowType)
	return fmt.Sprintf("rule{loc=%d flow=%s queue=%s rss=%d}", r.location, ft, formatRxQueue(r.rxQueue), r.rssContext)
}
