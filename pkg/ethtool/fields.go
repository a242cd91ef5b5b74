package ethtool

import (
	"strconv"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// uintField maps a parameter name to an unsigned field of a native structure
type uintField struct {
	name     string
	ptr      func(payload interface{}) *uint32
	readOnly bool
}

type fieldTable []uintField

func (t fieldTable) lookup(name string) (*uintField, error) {
	for i := range t {
		if t[i].name == name {
			return &t[i], nil
		}
	}
	return nil, errcode.New(errcode.NotFound, "unknown parameter %q", name)
}

func (t fieldTable) names() []string {
	names := make([]string, 0, len(t))
	for i := range t {
		names = append(names, t[i].name)
	}
	return names
}

func parseUint32(value string) (uint32, error) {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errcode.New(errcode.Invalid, "invalid value %q", value)
	}
	return uint32(v), nil
}

func parseBool(value string) (bool, error) {
	switch value {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, errcode.New(errcode.Invalid, "invalid value %q, expected 0 or 1", value)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func coalesceField(name string, f func(c *types.Coalesce) *uint32) uintField {
	return uintField{name: name, ptr: func(p interface{}) *uint32 { return f(p.(*types.Coalesce)) }}
}

var coalesceFields = fieldTable{
	coalesceField("rx_coalesce_usecs", func(c *types.Coalesce) *uint32 { return &c.RxCoalesceUsecs }),
	coalesceField("rx_max_coalesced_frames", func(c *types.Coalesce) *uint32 { return &c.RxMaxCoalescedFrames }),
	coalesceField("rx_coalesce_usecs_irq", func(c *types.Coalesce) *uint32 { return &c.RxCoalesceUsecsIrq }),
	coalesceField("rx_max_coalesced_frames_irq", func(c *types.Coalesce) *uint32 { return &c.RxMaxCoalescedFramesIrq }),
	coalesceField("tx_coalesce_usecs", func(c *types.Coalesce) *uint32 { return &c.TxCoalesceUsecs }),
	coalesceField("tx_max_coalesced_frames", func(c *types.Coalesce) *uint32 { return &c.TxMaxCoalescedFrames }),
	coalesceField("tx_coalesce_usecs_irq", func(c *types.Coalesce) *uint32 { return &c.TxCoalesceUsecsIrq }),
	coalesceField("tx_max_coalesced_frames_irq", func(c *types.Coalesce) *uint32 { return &c.TxMaxCoalescedFramesIrq }),
	coalesceField("stats_block_coalesce_usecs", func(c *types.Coalesce) *uint32 { return &c.StatsBlockCoalesceUsecs }),
	coalesceField("use_adaptive_rx_coalesce", func(c *types.Coalesce) *uint32 { return &c.UseAdaptiveRxCoalesce }),
	coalesceField("use_adaptive_tx_coalesce", func(c *types.Coalesce) *uint32 { return &c.UseAdaptiveTxCoalesce }),
	coalesceField("pkt_rate_low", func(c *types.Coalesce) *uint32 { return &c.PktRateLow }),
	coalesceField("rx_coalesce_usecs_low", func(c *types.Coalesce) *uint32 { return &c.RxCoalesceUsecsLow }),
	coalesceField("rx_max_coalesced_frames_low", func(c *types.Coalesce) *uint32 { return &c.RxMaxCoalescedFramesLow }),
	coalesceField("tx_coalesce_usecs_low", func(c *types.Coalesce) *uint32 { return &c.TxCoalesceUsecsLow }),
	coalesceField("tx_max_coalesced_frames_low", func(c *types.Coalesce) *uint32 { return &c.TxMaxCoalescedFramesLow }),
	coalesceField("pkt_rate_high", func(c *types.Coalesce) *uint32 { return &c.PktRateHigh }),
	coalesceField("rx_coalesce_usecs_high", func(c *types.Coalesce) *uint32 { return &c.RxCoalesceUsecsHigh }),
	coalesceField("rx_max_coalesced_frames_high", func(c *types.Coalesce) *uint32 { return &c.RxMaxCoalescedFramesHigh }),
	coalesceField("tx_coalesce_usecs_high", func(c *types.Coalesce) *uint32 { return &c.TxCoalesceUsecsHigh }),
	coalesceField("tx_max_coalesced_frames_high", func(c *types.Coalesce) *uint32 { return &c.TxMaxCoalescedFramesHigh }),
	coalesceField("rate_sample_interval", func(c *types.Coalesce) *uint32 { return &c.RateSampleInterval }),
}

func pauseField(name string, f func(p *types.PauseParam) *uint32) uintField {
	return uintField{name: name, ptr: func(p interface{}) *uint32 { return f(p.(*types.PauseParam)) }}
}

var pauseFields = fieldTable{
	pauseField("autoneg", func(p *types.PauseParam) *uint32 { return &p.Autoneg }),
	pauseField("rx", func(p *types.PauseParam) *uint32 { return &p.RxPause }),
	pauseField("tx", func(p *types.PauseParam) *uint32 { return &p.TxPause }),
}

func eeeField(name string, readOnly bool, f func(e *types.EEE) *uint32) uintField {
	return uintField{name: name, readOnly: readOnly, ptr: func(p interface{}) *uint32 { return f(p.(*types.EEE)) }}
}

var eeeFields = fieldTable{
	eeeField("supported", true, func(e *types.EEE) *uint32 { return &e.Supported }),
	eeeField("advertised", false, func(e *types.EEE) *uint32 { return &e.Advertised }),
	eeeField("lp_advertised", true, func(e *types.EEE) *uint32 { return &e.LpAdvertised }),
	eeeField("eee_active", true, func(e *types.EEE) *uint32 { return &e.EEEActive }),
	eeeField("eee_enabled", false, func(e *types.EEE) *uint32 { return &e.EEEEnabled }),
	eeeField("tx_lpi_enabled", false, func(e *types.EEE) *uint32 { return &e.TxLpiEnabled }),
	eeeField("tx_lpi_timer", false, func(e *types.EEE) *uint32 { return &e.TxLpiTimer }),
}

func ringField(name string, readOnly bool, f func(r *types.RingParam) *uint32) uintField {
	return uintField{name: name, readOnly: readOnly, ptr: func(p interface{}) *uint32 { return f(p.(*types.RingParam)) }}
}

var ringCurrentFields = fieldTable{
	ringField("rx", false, func(r *types.RingParam) *uint32 { return &r.RxPending }),
	ringField("rx_mini", false, func(r *types.RingParam) *uint32 { return &r.RxMiniPending }),
	ringField("rx_jumbo", false, func(r *types.RingParam) *uint32 { return &r.RxJumboPending }),
	ringField("tx", false, func(r *types.RingParam) *uint32 { return &r.TxPending }),
}

var ringMaxFields = fieldTable{
	ringField("rx", true, func(r *types.RingParam) *uint32 { return &r.RxMaxPending }),
	ringField("rx_mini", true, func(r *types.RingParam) *uint32 { return &r.RxMiniMaxPending }),
	ringField("rx_jumbo", true, func(r *types.RingParam) *uint32 { return &r.RxJumboMaxPending }),
	ringField("tx", true, func(r *types.RingParam) *uint32 { return &r.TxMaxPending }),
}

func channelsField(name string, readOnly bool, f func(c *types.Channels) *uint32) uintField {
	return uintField{name: name, readOnly: readOnly, ptr: func(p interface{}) *uint32 { return f(p.(*types.Channels)) }}
}

var channelsCurrentFields = fieldTable{
	channelsField("rx", false, func(c *types.Channels) *uint32 { return &c.RxCount }),
	channelsField("tx", false, func(c *types.Channels) *uint32 { return &c.TxCount }),
	channelsField("other", false, func(c *types.Channels) *uint32 { return &c.OtherCount }),
	channelsField("combined", false, func(c *types.Channels) *uint32 { return &c.CombinedCount }),
}

var channelsMaxFields = fieldTable{
	channelsField("rx", true, func(c *types.Channels) *uint32 { return &c.MaxRx }),
	channelsField("tx", true, func(c *types.Channels) *uint32 { return &c.MaxTx }),
	channelsField("other", true, func(c *types.Channels) *uint32 { return &c.MaxOther }),
	channelsField("combined", true, func(c *types.Channels) *uint32 { return &c.MaxCombined }),
}
