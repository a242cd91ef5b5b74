package cfgtree

import (
	"strings"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

// SubID is one component of an instance identifier
type SubID struct {
	Name string
	Inst string
}

// OID is an instance identifier, e.g /agent:ta/interface:eth0/coalesce:/global:/param:rx_coalesce_usecs
type OID []SubID

// ParseOID parses an instance identifier. A component without ':' has an empty instance name.
func ParseOID(s string) (OID, error) {
	if s == "" || s[0] != '/' {
		return nil, errcode.New(errcode.Invalid, "oid %q must start with '/'", s)
	}
	if s == "/" {
		return OID{}, nil
	}

	parts := strings.Split(s[1:], "/")
	oid := make(OID, 0, len(parts))
	for _, p := range parts {
		name, inst, _ := strings.Cut(p, ":")
		if name == "" {
			return nil, errcode.New(errcode.Invalid, "oid %q has an empty component", s)
		}
		oid = append(oid, SubID{Name: name, Inst: inst})
	}
	return oid, nil
}

// String returns the instance identifier
func (o OID) String() string {
	if len(o) == 0 {
		return "/"
	}
	sb := strings.Builder{}
	for _, s := range o {
		sb.WriteByte('/')
		sb.WriteString(s.Name)
		sb.WriteByte(':')
		sb.WriteString(s.Inst)
	}
	return sb.String()
}

// ObjectPath returns the object identifier, e.g /agent/interface/coalesce
func (o OID) ObjectPath() string {
	if len(o) == 0 {
		return "/"
	}
	sb := strings.Builder{}
	for _, s := range o {
		sb.WriteByte('/')
		sb.WriteString(s.Name)
	}
	return sb.String()
}

// Inst returns the instance name of the last component named name
func (o OID) Inst(name string) string {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Name == name {
			return o[i].Inst
		}
	}
	return ""
}

// Last returns the last component
func (o OID) Last() SubID {
	if len(o) == 0 {
		return SubID{}
	}
	return o[len(o)-1]
}

// Child returns a copy of the identifier extended by one component
func (o OID) Child(name, inst string) OID {
	c := make(OID, len(o), len(o)+1)
	copy(c, o)
	return append(c, SubID{Name: name, Inst: inst})
}

// Prefix returns a copy of the first n components
func (o OID) Prefix(n int) OID {
	if n > len(o) {
		n = len(o)
	}
	c := make(OID, n)
	copy(c, o[:n])
	return c
}

func splitObjectPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, errcode.New(errcode.Invalid, "object path %q must start with '/'", path)
	}
	if path == "/" {
		return nil, nil
	}
	return strings.Split(path[1:], "/"), nil
}
