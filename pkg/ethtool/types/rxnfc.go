package types

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// FlowUnionLen is the size of union ethtool_flow_union
	FlowUnionLen = 52
	// FlowExtLen is the size of struct ethtool_flow_ext
	FlowExtLen = 20
)

// Offsets within union ethtool_flow_union. All multi-byte fields are big endian.
const (
	// tcpip4, ah_espip4, usrip4
	OffIP4Src   = 0
	OffIP4Dst   = 4
	OffIP4PSrc  = 8
	OffIP4PDst  = 10
	OffIP4SPI   = 8
	OffIP4L4    = 8
	OffIP4Tos   = 12
	OffIP4IPVer = 13
	OffIP4Proto = 14

	// tcpip6, ah_espip6, usrip6
	OffIP6Src     = 0
	OffIP6Dst     = 16
	OffIP6PSrc    = 32
	OffIP6PDst    = 34
	OffIP6SPI     = 32
	OffIP6L4      = 32
	OffIP6TClass  = 36
	OffIP6L4Proto = 37

	// ethhdr
	OffEthDst   = 0
	OffEthSrc   = 6
	OffEthProto = 12
)

// Offsets within struct ethtool_flow_ext
const (
	OffExtHDest     = 2
	OffExtVlanEtype = 8
	OffExtVlanTCI   = 10
	OffExtData0     = 12
	OffExtData1     = 16
)

// RxFlowSpec is struct ethtool_rx_flow_spec
type RxFlowSpec struct {
	FlowType   uint32
	HU         [FlowUnionLen]byte
	HExt       [FlowExtLen]byte
	MU         [FlowUnionLen]byte
	MExt       [FlowExtLen]byte
	_          [4]byte
	RingCookie uint64
	Location   uint32
	_          [4]byte
}

// RxNFC is struct ethtool_rxnfc with its trailing rule locations.
// RuleCnt shares storage with rss_context in rule requests.
type RxNFC struct {
	Cmd      Cmd
	FlowType uint32
	Data     uint64
	FS       RxFlowSpec
	RuleCnt  uint32
	RuleLocs []uint32
}

type rxnfcHeader struct {
	Cmd      Cmd
	FlowType uint32
	Data     uint64
	FS       RxFlowSpec
	RuleCnt  uint32
}

// Encode encodes the request; room is reserved for locs rule locations
func (r *RxNFC) Encode(locs uint32) ([]byte, error) {
	buf := bytes.Buffer{}
	hdr := rxnfcHeader{Cmd: r.Cmd, FlowType: r.FlowType, Data: r.Data, FS: r.FS, RuleCnt: r.RuleCnt}
	if err := binary.Write(&buf, binary.NativeEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to encode rxnfc request")
	}
	l := make([]uint32, locs)
	copy(l, r.RuleLocs)
	if err := binary.Write(&buf, binary.NativeEndian, l); err != nil {
		return nil, errors.Wrap(err, "failed to encode rxnfc rule locations")
	}
	return buf.Bytes(), nil
}

// DecodeRxNFC decodes a reply carrying up to locs rule locations
func DecodeRxNFC(data []byte, locs uint32) (*RxNFC, error) {
	rd := bytes.NewReader(data)
	hdr := rxnfcHeader{}
	if err := binary.Read(rd, binary.NativeEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to decode rxnfc reply")
	}
	r := &RxNFC{Cmd: hdr.Cmd, FlowType: hdr.FlowType, Data: hdr.Data, FS: hdr.FS, RuleCnt: hdr.RuleCnt}
	if locs > 0 {
		r.RuleLocs = make([]uint32, locs)
		if err := binary.Read(rd, binary.NativeEndian, r.RuleLocs); err != nil {
			return nil, errors.Wrap(err, "failed to decode rxnfc rule locations")
		}
	}
	return r, nil
}

// Rxfh is struct ethtool_rxfh with its indirection table and hash key
type Rxfh struct {
	Cmd        Cmd
	RSSContext uint32
	IndirSize  uint32
	KeySize    uint32
	HFunc      uint8
	InputXfrm  uint8
	Indir      []uint32
	Key        []byte
}

type rxfhHeader struct {
	Cmd        Cmd
	RSSContext uint32
	IndirSize  uint32
	KeySize    uint32
	HFunc      uint8
	InputXfrm  uint8
	Rsvd8      [2]uint8
	Rsvd32     uint32
}

// RxfhHeaderLen is the size of struct ethtool_rxfh without rss_config
const RxfhHeaderLen = 24

// Encode encodes the request. The indirection table is carried only when
// IndirSize is a real table size.
func (r *Rxfh) Encode() ([]byte, error) {
	buf := bytes.Buffer{}
	hdr := rxfhHeader{
		Cmd:        r.Cmd,
		RSSContext: r.RSSContext,
		IndirSize:  r.IndirSize,
		KeySize:    r.KeySize,
		HFunc:      r.HFunc,
		InputXfrm:  r.InputXfrm,
	}
	if err := binary.Write(&buf, binary.NativeEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to encode rxfh request")
	}
	if r.IndirSize != 0 && r.IndirSize != RxfhIndirNoChange {
		indir := make([]uint32, r.IndirSize)
		copy(indir, r.Indir)
		if err := binary.Write(&buf, binary.NativeEndian, indir); err != nil {
			return nil, errors.Wrap(err, "failed to encode indirection table")
		}
	}
	key := make([]byte, r.KeySize)
	copy(key, r.Key)
	_, _ = buf.Write(key)
	return buf.Bytes(), nil
}

// DecodeRxfh decodes a GRSSH reply
func DecodeRxfh(data []byte) (*Rxfh, error) {
	rd := bytes.NewReader(data)
	hdr := rxfhHeader{}
	if err := binary.Read(rd, binary.NativeEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "failed to decode rxfh reply")
	}
	r := &Rxfh{
		Cmd:        hdr.Cmd,
		RSSContext: hdr.RSSContext,
		IndirSize:  hdr.IndirSize,
		KeySize:    hdr.KeySize,
		HFunc:      hdr.HFunc,
		InputXfrm:  hdr.InputXfrm,
	}
	if rd.Len() == 0 {
		return r, nil
	}
	r.Indir = make([]uint32, hdr.IndirSize)
	if err := binary.Read(rd, binary.NativeEndian, r.Indir); err != nil {
		return nil, errors.Wrap(err, "failed to decode indirection table")
	}
	r.Key = make([]byte, hdr.KeySize)
	if _, err := rd.Read(r.Key); err != nil && hdr.KeySize > 0 {
		return nil, errors.Wrap(err, "failed to decode hash key")
	}
	return r, nil
}
