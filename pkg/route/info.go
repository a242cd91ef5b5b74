// Package route exposes kernel routes as configuration tree instances.
//
// A route instance is named "<dst>|<prefix>[,metric=N][,tos=N][,table=N]",
// its value is the gateway address and its attributes are dev, mtu, win,
// irtt, hoplimit, type and src.
package route

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

// Type is a route type, numerically equal to the kernel RTN_* value
type Type int

const (
	TypeUnicast     Type = unix.RTN_UNICAST
	TypeLocal       Type = unix.RTN_LOCAL
	TypeBroadcast   Type = unix.RTN_BROADCAST
	TypeAnycast     Type = unix.RTN_ANYCAST
	TypeMulticast   Type = unix.RTN_MULTICAST
	TypeBlackhole   Type = unix.RTN_BLACKHOLE
	TypeUnreachable Type = unix.RTN_UNREACHABLE
	TypeProhibit    Type = unix.RTN_PROHIBIT
	TypeThrow       Type = unix.RTN_THROW
	TypeNat         Type = unix.RTN_NAT
)

var typeNames = map[Type]string{
	TypeUnicast:     "unicast",
	TypeLocal:       "local",
	TypeBroadcast:   "broadcast",
	TypeAnycast:     "anycast",
	TypeMulticast:   "multicast",
	TypeBlackhole:   "blackhole",
	TypeUnreachable: "unreachable",
	TypeProhibit:    "prohibit",
	TypeThrow:       "throw",
	TypeNat:         "nat",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type-%d", int(t))
}

// ParseType parses a route type name
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, errcode.New(errcode.Invalid, "unknown route type %q", s)
}

// Flags marks optional fields of Info which were given
type Flags uint32

const (
	FlagGateway Flags = 1 << iota
	FlagDev
	FlagMTU
	FlagWin
	FlagIRTT
	FlagHoplimit
	FlagSrc
	FlagMetric
	FlagTos
	FlagTable
)

// route attribute names
const (
	AttrDev      = "dev"
	AttrMTU      = "mtu"
	AttrWin      = "win"
	AttrIRTT     = "irtt"
	AttrHoplimit = "hoplimit"
	AttrType     = "type"
	AttrSrc      = "src"
)

// Attributes lists route attribute names in the order they are loaded
var Attributes = []string{AttrMTU, AttrWin, AttrIRTT, AttrHoplimit, AttrSrc, AttrDev, AttrType}

// DefaultTable is the kernel main routing table
const DefaultTable = unix.RT_TABLE_MAIN

// Info is a parsed route
type Info struct {
	Family int
	Dst    net.IP
	Prefix int

	Metric int
	Tos    int
	Table  int

	Gateway net.IP
	Src     net.IP
	Dev     string

	MTU      uint32
	Win      uint32
	IRTT     uint32
	Hoplimit uint32
	Type     Type

	Flags Flags
}

// Has returns true if all flags f are set
func (i *Info) Has(f Flags) bool {
	return i.Flags&f == f
}

// DstNet returns the destination as IPNet
func (i *Info) DstNet() *net.IPNet {
	bits := 32
	if i.Family == unix.AF_INET6 {
		bits = 128
	}
	return &net.IPNet{IP: i.Dst, Mask: net.CIDRMask(i.Prefix, bits)}
}

func familyOf(addr string) int {
	if strings.Contains(addr, ":") {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func parseAddr(addr string, family int) (net.IP, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, errcode.New(errcode.Invalid, "invalid address %q", addr)
	}
	if family == unix.AF_INET {
		if ip = ip.To4(); ip == nil {
			return nil, errcode.New(errcode.Invalid, "invalid IPv4 address %q", addr)
		}
	}
	return ip, nil
}

// leadingInt parses decimal digits at the start of s, returning 0 if there are none
func leadingInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// ParseInstance parses a route instance name
func ParseInstance(name string) (*Info, error) {
	addr, rest, found := strings.Cut(name, "|")
	if !found {
		return nil, errcode.New(errcode.Invalid, "route %q has no prefix", name)
	}

	info := &Info{Family: familyOf(addr), Table: DefaultTable, Type: TypeUnicast}
	ip, err := parseAddr(addr, info.Family)
	if err != nil {
		return nil, err
	}
	info.Dst = ip

	if strings.HasPrefix(rest, "-") {
		return nil, errcode.New(errcode.Invalid, "route %q has negative prefix", name)
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return nil, errcode.New(errcode.Invalid, "route %q has invalid prefix", name)
	}
	prefix, err := strconv.Atoi(rest[:end])
	maxPrefix := 32
	if info.Family == unix.AF_INET6 {
		maxPrefix = 128
	}
	if err != nil || prefix > maxPrefix {
		return nil, errcode.New(errcode.Invalid, "route %q has invalid prefix", name)
	}
	info.Prefix = prefix
	rest = rest[end:]

	if _, v, ok := strings.Cut(rest, "metric="); ok {
		info.Metric = leadingInt(v)
		info.Flags |= FlagMetric
	}
	if _, v, ok := strings.Cut(rest, "tos="); ok {
		info.Tos = leadingInt(v)
		info.Flags |= FlagTos
	}
	if _, v, ok := strings.Cut(rest, "table="); ok {
		info.Table = leadingInt(v)
		info.Flags |= FlagTable
	}
	return info, nil
}

// InstanceName returns the route instance name. Metric, tos and table are
// appended only if they differ from defaults.
func (i *Info) InstanceName() string {
	sb := strings.Builder{}
	sb.WriteString(i.Dst.String())
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(i.Prefix))
	if i.Metric != 0 {
		fmt.Fprintf(&sb, ",metric=%d", i.Metric)
	}
	if i.Tos != 0 {
		fmt.Fprintf(&sb, ",tos=%d", i.Tos)
	}
	if i.Table != DefaultTable && i.Table != 0 {
		fmt.Fprintf(&sb, ",table=%d", i.Table)
	}
	return sb.String()
}

// ParseValue parses the route value, the gateway address. An empty value
// or an unspecified address means no gateway.
func (i *Info) ParseValue(value string) error {
	i.Flags &^= FlagGateway
	i.Gateway = nil
	if value == "" {
		return nil
	}
	ip, err := parseAddr(value, familyOf(value))
	if err != nil {
		return err
	}
	if !ip.IsUnspecified() {
		i.Gateway = ip
		i.Flags |= FlagGateway
	}
	return nil
}

func parseUint(name, value string) (uint32, error) {
	if value == "" || value[0] == '-' {
		return 0, errcode.New(errcode.Invalid, "invalid %s %q", name, value)
	}
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errcode.New(errcode.Invalid, "invalid %s %q", name, value)
	}
	return uint32(v), nil
}

// ParseAttr applies one route attribute
func (i *Info) ParseAttr(name, value string) error {
	var err error
	switch name {
	case AttrDev:
		if value == "" {
			return nil
		}
		if len(value) > unix.IFNAMSIZ {
			return errcode.New(errcode.Invalid, "interface name %q is too long", value)
		}
		i.Dev = value
		i.Flags |= FlagDev
	case AttrMTU:
		if i.MTU, err = parseUint(name, value); err != nil {
			return err
		}
		i.Flags |= FlagMTU
	case AttrWin:
		if i.Win, err = parseUint(name, value); err != nil {
			return err
		}
		i.Flags |= FlagWin
	case AttrIRTT:
		if i.IRTT, err = parseUint(name, value); err != nil {
			return err
		}
		i.Flags |= FlagIRTT
	case AttrHoplimit:
		if i.Hoplimit, err = parseUint(name, value); err != nil {
			return err
		}
		i.Flags |= FlagHoplimit
	case AttrType:
		if i.Type, err = ParseType(value); err != nil {
			return err
		}
	case AttrSrc:
		ip, err := parseAddr(value, familyOf(value))
		if err != nil {
			return err
		}
		i.Src = ip
		i.Flags |= FlagSrc
	default:
		return errcode.New(errcode.Invalid, "unknown route attribute %q", name)
	}
	return nil
}

// ParseAttrs resets the route type to unicast and applies attrs in order
func (i *Info) ParseAttrs(attrs []cache.Attr) error {
	i.Type = TypeUnicast
	for _, a := range attrs {
		if err := i.ParseAttr(a.Name, a.Value); err != nil {
			return err
		}
	}
	return nil
}

// ParseObject parses a cached route object: its name, value and attributes
func ParseObject(obj *cache.Object) (*Info, error) {
	info, err := ParseInstance(obj.Name)
	if err != nil {
		return nil, err
	}
	if err := info.ParseValue(obj.Value); err != nil {
		return nil, err
	}
	if err := info.ParseAttrs(obj.Attrs()); err != nil {
		return nil, err
	}
	return info, nil
}
