package types

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Fixed size ethtool requests. Field order and padding follow linux/ethtool.h
// so that values can be encoded with encoding/binary in host byte order.

// Value is a generic request carrying one value (struct ethtool_value)
type Value struct {
	Cmd  Cmd
	Data uint32
}

// Coalesce is struct ethtool_coalesce
type Coalesce struct {
	Cmd                      Cmd
	RxCoalesceUsecs          uint32
	RxMaxCoalescedFrames     uint32
	RxCoalesceUsecsIrq       uint32
	RxMaxCoalescedFramesIrq  uint32
	TxCoalesceUsecs          uint32
	TxMaxCoalescedFrames     uint32
	TxCoalesceUsecsIrq       uint32
	TxMaxCoalescedFramesIrq  uint32
	StatsBlockCoalesceUsecs  uint32
	UseAdaptiveRxCoalesce    uint32
	UseAdaptiveTxCoalesce    uint32
	PktRateLow               uint32
	RxCoalesceUsecsLow       uint32
	RxMaxCoalescedFramesLow  uint32
	TxCoalesceUsecsLow       uint32
	TxMaxCoalescedFramesLow  uint32
	PktRateHigh              uint32
	RxCoalesceUsecsHigh      uint32
	RxMaxCoalescedFramesHigh uint32
	TxCoalesceUsecsHigh      uint32
	TxMaxCoalescedFramesHigh uint32
	RateSampleInterval       uint32
}

// PauseParam is struct ethtool_pauseparam
type PauseParam struct {
	Cmd     Cmd
	Autoneg uint32
	RxPause uint32
	TxPause uint32
}

// EEE is struct ethtool_eee
type EEE struct {
	Cmd          Cmd
	Supported    uint32
	Advertised   uint32
	LpAdvertised uint32
	EEEActive    uint32
	EEEEnabled   uint32
	TxLpiEnabled uint32
	TxLpiTimer   uint32
	Reserved     [2]uint32
}

// RingParam is struct ethtool_ringparam
type RingParam struct {
	Cmd               Cmd
	RxMaxPending      uint32
	RxMiniMaxPending  uint32
	RxJumboMaxPending uint32
	TxMaxPending      uint32
	RxPending         uint32
	RxMiniPending     uint32
	RxJumboPending    uint32
	TxPending         uint32
}

// Channels is struct ethtool_channels
type Channels struct {
	Cmd           Cmd
	MaxRx         uint32
	MaxTx         uint32
	MaxOther      uint32
	MaxCombined   uint32
	RxCount       uint32
	TxCount       uint32
	OtherCount    uint32
	CombinedCount uint32
}

// LegacySettings is struct ethtool_cmd used by ETHTOOL_GSET/SSET
type LegacySettings struct {
	Cmd           Cmd
	Supported     uint32
	Advertising   uint32
	Speed         uint16
	Duplex        uint8
	Port          uint8
	PhyAddress    uint8
	Transceiver   uint8
	Autoneg       uint8
	MdioSupport   uint8
	Maxtxpkt      uint32
	Maxrxpkt      uint32
	SpeedHi       uint16
	EthTpMdix     uint8
	EthTpMdixCtrl uint8
	LpAdvertising uint32
	Reserved      [2]uint32
}

// GetSpeed returns the speed combined from both halves
func (s *LegacySettings) GetSpeed() uint32 {
	return uint32(s.SpeedHi)<<16 | uint32(s.Speed)
}

// SetSpeed splits speed into both halves
func (s *LegacySettings) SetSpeed(speed uint32) {
	s.Speed = uint16(speed & 0xffff)
	s.SpeedHi = uint16(speed >> 16)
}

// LinkSettings is struct ethtool_link_settings followed by the three link
// mode masks (supported, advertising, lp_advertising), each of
// LinkModeMasksNwords words.
type LinkSettings struct {
	Cmd                 Cmd
	Speed               uint32
	Duplex              uint8
	Port                uint8
	PhyAddress          uint8
	Autoneg             uint8
	MdioSupport         uint8
	EthTpMdix           uint8
	EthTpMdixCtrl       uint8
	LinkModeMasksNwords int8
	Transceiver         uint8
	MasterSlaveCfg      uint8
	MasterSlaveState    uint8
	RateMatching        uint8
	Reserved            [7]uint32
	LinkModeMasks       [3 * LinkModeMasksMaxWords]uint32
}

// SSetInfo is struct ethtool_sset_info requesting one string set
type SSetInfo struct {
	Cmd      Cmd
	Reserved uint32
	SSetMask uint64
	Data     uint32
}

// Encode encodes v in host byte order
func Encode(v interface{}) ([]byte, error) {
	buf := bytes.Buffer{}
	if err := binary.Write(&buf, binary.NativeEndian, v); err != nil {
		return nil, errors.Wrap(err, "failed to encode ethtool request")
	}
	return buf.Bytes(), nil
}

// Decode decodes data in host byte order into v
func Decode(data []byte, v interface{}) error {
	if err := binary.Read(bytes.NewReader(data), binary.NativeEndian, v); err != nil {
		return errors.Wrap(err, "failed to decode ethtool reply")
	}
	return nil
}
