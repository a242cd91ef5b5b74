// Package testutil provides an in-memory ethtool provider for tests
package testutil

import (
	"fmt"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// FakeInterface is the ethtool state of one fake interface. A nil group
// pointer makes requests of that group fail with EOPNOTSUPP.
type FakeInterface struct {
	Coalesce *types.Coalesce
	Pause    *types.PauseParam
	EEE      *types.EEE
	Ring     *types.RingParam
	Channels *types.Channels

	PrivFlagNames []string
	PrivFlags     uint32

	Link uint32
	// Legacy is returned by ETHTOOL_GSET
	Legacy *types.LegacySettings
	// Modern is returned by ETHTOOL_GLINKSETTINGS, LinkModeMasksNwords holds
	// the real word count
	Modern               *types.LinkSettings
	ModernSetUnsupported bool
	AutonegRestarts      int

	FeatureNames []string
	Features     []types.FeatureBlock

	HashFuncNames []string
	Rxfh          *types.Rxfh

	RulesUnsupported bool
	RuleTableSize    uint32
	SpecLoc          bool
	Rules            map[uint32]*types.RxNFC

	ResetFlags uint32
}

// FakeKernel implements net.EthtoolProvider over FakeInterfaces and records
// the commands it was asked to run
type FakeKernel struct {
	Interfaces map[string]*FakeInterface
	Calls      []string
}

// NewFakeKernel creates a FakeKernel without interfaces
func NewFakeKernel() *FakeKernel {
	return &FakeKernel{Interfaces: make(map[string]*FakeInterface)}
}

// CallCount returns how many times cmd was run on ifName
func (k *FakeKernel) CallCount(cmd types.Cmd, ifName string) int {
	n := 0
	key := callKey(cmd, ifName)
	for _, c := range k.Calls {
		if c == key {
			n++
		}
	}
	return n
}

func callKey(cmd types.Cmd, ifName string) string {
	return fmt.Sprintf("%s %s", cmd, ifName)
}

func (k *FakeKernel) iface(cmd types.Cmd, ifName string) (*FakeInterface, error) {
	k.Calls = append(k.Calls, callKey(cmd, ifName))
	i, ok := k.Interfaces[ifName]
	if !ok {
		return nil, unix.ENODEV
	}
	return i, nil
}

func (k *FakeKernel) GetCoalesce(ifName string) (*types.Coalesce, error) {
	i, err := k.iface(types.CmdGCoalesce, ifName)
	if err != nil {
		return nil, err
	}
	if i.Coalesce == nil {
		return nil, unix.EOPNOTSUPP
	}
	c := *i.Coalesce
	return &c, nil
}

func (k *FakeKernel) SetCoalesce(ifName string, c *types.Coalesce) error {
	i, err := k.iface(types.CmdSCoalesce, ifName)
	if err != nil {
		return err
	}
	if i.Coalesce == nil {
		return unix.EOPNOTSUPP
	}
	v := *c
	i.Coalesce = &v
	return nil
}

func (k *FakeKernel) GetPauseParam(ifName string) (*types.PauseParam, error) {
	i, err := k.iface(types.CmdGPauseParam, ifName)
	if err != nil {
		return nil, err
	}
	if i.Pause == nil {
		return nil, unix.EOPNOTSUPP
	}
	p := *i.Pause
	return &p, nil
}

func (k *FakeKernel) SetPauseParam(ifName string, p *types.PauseParam) error {
	i, err := k.iface(types.CmdSPauseParam, ifName)
	if err != nil {
		return err
	}
	if i.Pause == nil {
		return unix.EOPNOTSUPP
	}
	v := *p
	i.Pause = &v
	return nil
}

func (k *FakeKernel) GetEEE(ifName string) (*types.EEE, error) {
	i, err := k.iface(types.CmdGEEE, ifName)
	if err != nil {
		return nil, err
	}
	if i.EEE == nil {
		return nil, unix.EOPNOTSUPP
	}
	e := *i.EEE
	return &e, nil
}

func (k *FakeKernel) SetEEE(ifName string, e *types.EEE) error {
	i, err := k.iface(types.CmdSEEE, ifName)
	if err != nil {
		return err
	}
	if i.EEE == nil {
		return unix.EOPNOTSUPP
	}
	v := *e
	i.EEE = &v
	return nil
}

func (k *FakeKernel) GetRingParam(ifName string) (*types.RingParam, error) {
	i, err := k.iface(types.CmdGRingParam, ifName)
	if err != nil {
		return nil, err
	}
	if i.Ring == nil {
		return nil, unix.EOPNOTSUPP
	}
	r := *i.Ring
	return &r, nil
}

func (k *FakeKernel) SetRingParam(ifName string, r *types.RingParam) error {
	i, err := k.iface(types.CmdSRingParam, ifName)
	if err != nil {
		return err
	}
	if i.Ring == nil {
		return unix.EOPNOTSUPP
	}
	if r.RxPending > i.Ring.RxMaxPending || r.TxPending > i.Ring.TxMaxPending {
		return unix.EINVAL
	}
	v := *r
	i.Ring = &v
	return nil
}

func (k *FakeKernel) GetChannels(ifName string) (*types.Channels, error) {
	i, err := k.iface(types.CmdGChannels, ifName)
	if err != nil {
		return nil, err
	}
	if i.Channels == nil {
		return nil, unix.EOPNOTSUPP
	}
	c := *i.Channels
	return &c, nil
}

func (k *FakeKernel) SetChannels(ifName string, c *types.Channels) error {
	i, err := k.iface(types.CmdSChannels, ifName)
	if err != nil {
		return err
	}
	if i.Channels == nil {
		return unix.EOPNOTSUPP
	}
	if c.CombinedCount > i.Channels.MaxCombined {
		return unix.EINVAL
	}
	v := *c
	i.Channels = &v
	return nil
}

func (k *FakeKernel) GetPrivFlags(ifName string) (uint32, error) {
	i, err := k.iface(types.CmdGPFlags, ifName)
	if err != nil {
		return 0, err
	}
	if len(i.PrivFlagNames) == 0 {
		return 0, unix.EOPNOTSUPP
	}
	return i.PrivFlags, nil
}

func (k *FakeKernel) SetPrivFlags(ifName string, flags uint32) error {
	i, err := k.iface(types.CmdSPFlags, ifName)
	if err != nil {
		return err
	}
	if len(i.PrivFlagNames) == 0 {
		return unix.EOPNOTSUPP
	}
	i.PrivFlags = flags
	return nil
}

func (k *FakeKernel) GetLink(ifName string) (uint32, error) {
	i, err := k.iface(types.CmdGLink, ifName)
	if err != nil {
		return 0, err
	}
	return i.Link, nil
}

func (k *FakeKernel) RestartAutoneg(ifName string) error {
	i, err := k.iface(types.CmdNwayRst, ifName)
	if err != nil {
		return err
	}
	i.AutonegRestarts++
	return nil
}

func (k *FakeKernel) Reset(ifName string, flags uint32) (uint32, error) {
	i, err := k.iface(types.CmdReset, ifName)
	if err != nil {
		return 0, err
	}
	i.ResetFlags = flags
	return 0, nil
}

func (k *FakeKernel) GetLegacySettings(ifName string) (*types.LegacySettings, error) {
	i, err := k.iface(types.CmdGSet, ifName)
	if err != nil {
		return nil, err
	}
	if i.Legacy == nil {
		return nil, unix.EOPNOTSUPP
	}
	s := *i.Legacy
	return &s, nil
}

func (k *FakeKernel) SetLegacySettings(ifName string, s *types.LegacySettings) error {
	i, err := k.iface(types.CmdSSet, ifName)
	if err != nil {
		return err
	}
	if i.Legacy == nil {
		return unix.EOPNOTSUPP
	}
	v := *s
	i.Legacy = &v
	return nil
}

// GetLinkSettings replies to a request with a wrong word count with the
// negated real count and no masks
func (k *FakeKernel) GetLinkSettings(ifName string, nwords int8) (*types.LinkSettings, error) {
	i, err := k.iface(types.CmdGLinkSettings, ifName)
	if err != nil {
		return nil, err
	}
	if i.Modern == nil {
		return nil, unix.EOPNOTSUPP
	}
	s := *i.Modern
	if nwords != i.Modern.LinkModeMasksNwords {
		s.LinkModeMasksNwords = -i.Modern.LinkModeMasksNwords
		s.LinkModeMasks = [3 * types.LinkModeMasksMaxWords]uint32{}
	}
	return &s, nil
}

func (k *FakeKernel) SetLinkSettings(ifName string, s *types.LinkSettings) error {
	i, err := k.iface(types.CmdSLinkSettings, ifName)
	if err != nil {
		return err
	}
	if i.Modern == nil || i.ModernSetUnsupported {
		return unix.EOPNOTSUPP
	}
	if s.LinkModeMasksNwords != i.Modern.LinkModeMasksNwords {
		return unix.EINVAL
	}
	v := *s
	i.Modern = &v
	return nil
}

func (i *FakeInterface) stringSet(set types.StringSet) []string {
	switch set {
	case types.StringSetPrivFlags:
		return i.PrivFlagNames
	case types.StringSetFeatures:
		return i.FeatureNames
	case types.StringSetRssHashFuncs:
		return i.HashFuncNames
	}
	return nil
}

func (k *FakeKernel) GetStringSetLen(ifName string, set types.StringSet) (uint32, error) {
	i, err := k.iface(types.CmdGSSetInfo, ifName)
	if err != nil {
		return 0, err
	}
	strs := i.stringSet(set)
	if strs == nil {
		return 0, unix.EOPNOTSUPP
	}
	return uint32(len(strs)), nil
}

func (k *FakeKernel) GetStrings(ifName string, set types.StringSet, count uint32) ([]string, error) {
	i, err := k.iface(types.CmdGStrings, ifName)
	if err != nil {
		return nil, err
	}
	strs := i.stringSet(set)
	if strs == nil {
		return nil, unix.EOPNOTSUPP
	}
	if count > uint32(len(strs)) {
		return nil, unix.EINVAL
	}
	return append([]string{}, strs[:count]...), nil
}

func (k *FakeKernel) GetFeatures(ifName string, blocks uint32) ([]types.FeatureBlock, error) {
	i, err := k.iface(types.CmdGFeatures, ifName)
	if err != nil {
		return nil, err
	}
	if i.Features == nil {
		return nil, unix.EOPNOTSUPP
	}
	if blocks > uint32(len(i.Features)) {
		blocks = uint32(len(i.Features))
	}
	return append([]types.FeatureBlock{}, i.Features[:blocks]...), nil
}

// SetFeatures changes requested and active bits of changeable features
func (k *FakeKernel) SetFeatures(ifName string, blocks []types.SetFeatureBlock) error {
	i, err := k.iface(types.CmdSFeatures, ifName)
	if err != nil {
		return err
	}
	if i.Features == nil {
		return unix.EOPNOTSUPP
	}
	for n, b := range blocks {
		if n >= len(i.Features) {
			return unix.EINVAL
		}
		f := &i.Features[n]
		valid := b.Valid & f.Available &^ f.NeverChanged
		f.Requested = f.Requested&^valid | b.Requested&valid
		f.Active = f.Active&^valid | b.Requested&valid
	}
	return nil
}

func (k *FakeKernel) GetRxfh(ifName string, rssContext, indirSize, keySize uint32) (*types.Rxfh, error) {
	i, err := k.iface(types.CmdGRssh, ifName)
	if err != nil {
		return nil, err
	}
	if i.Rxfh == nil {
		return nil, unix.EOPNOTSUPP
	}
	if rssContext != 0 {
		return nil, unix.ENOENT
	}
	r := &types.Rxfh{
		Cmd:       types.CmdGRssh,
		IndirSize: uint32(len(i.Rxfh.Indir)),
		KeySize:   uint32(len(i.Rxfh.Key)),
		HFunc:     i.Rxfh.HFunc,
	}
	if indirSize == 0 && keySize == 0 {
		return r, nil
	}
	if indirSize != r.IndirSize || keySize != r.KeySize {
		return nil, unix.EINVAL
	}
	r.Indir = append([]uint32{}, i.Rxfh.Indir...)
	r.Key = append([]byte{}, i.Rxfh.Key...)
	return r, nil
}

// SetRxfh follows ETHTOOL_SRSSH: zero indirection size restores the
// default spreading over Channels.CombinedCount (or 1) queues
func (k *FakeKernel) SetRxfh(ifName string, rxfh *types.Rxfh) error {
	i, err := k.iface(types.CmdSRssh, ifName)
	if err != nil {
		return err
	}
	if i.Rxfh == nil {
		return unix.EOPNOTSUPP
	}
	switch rxfh.IndirSize {
	case types.RxfhIndirNoChange:
	case 0:
		queues := uint32(1)
		if i.Channels != nil && i.Channels.CombinedCount > 0 {
			queues = i.Channels.CombinedCount
		}
		for n := range i.Rxfh.Indir {
			i.Rxfh.Indir[n] = uint32(n) % queues
		}
	default:
		if rxfh.IndirSize != uint32(len(i.Rxfh.Indir)) {
			return unix.EINVAL
		}
		copy(i.Rxfh.Indir, rxfh.Indir)
	}
	if rxfh.KeySize != 0 {
		if rxfh.KeySize != uint32(len(i.Rxfh.Key)) {
			return unix.EINVAL
		}
		copy(i.Rxfh.Key, rxfh.Key)
	}
	if rxfh.HFunc != 0 {
		i.Rxfh.HFunc = rxfh.HFunc
	}
	return nil
}

func (k *FakeKernel) rules(cmd types.Cmd, ifName string) (*FakeInterface, error) {
	i, err := k.iface(cmd, ifName)
	if err != nil {
		return nil, err
	}
	if i.RulesUnsupported {
		return nil, unix.EOPNOTSUPP
	}
	if i.Rules == nil {
		i.Rules = make(map[uint32]*types.RxNFC)
	}
	return i, nil
}

func (k *FakeKernel) GetRxRuleCount(ifName string) (uint32, uint64, error) {
	i, err := k.rules(types.CmdGRxClsRlCnt, ifName)
	if err != nil {
		return 0, 0, err
	}
	var data uint64
	if i.SpecLoc {
		data = uint64(types.RxClsLocSpecial)
	}
	return uint32(len(i.Rules)), data, nil
}

func (k *FakeKernel) GetRxRuleLocations(ifName string, count uint32) (uint32, []uint32, error) {
	i, err := k.rules(types.CmdGRxClsRlAll, ifName)
	if err != nil {
		return 0, nil, err
	}
	locs := make([]uint32, 0, len(i.Rules))
	for loc := range i.Rules {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(a, b int) bool { return locs[a] < locs[b] })
	if uint32(len(locs)) > count {
		return 0, nil, unix.EMSGSIZE
	}
	return i.RuleTableSize, locs, nil
}

func (k *FakeKernel) GetRxRule(ifName string, loc uint32) (*types.RxNFC, error) {
	i, err := k.rules(types.CmdGRxClsRule, ifName)
	if err != nil {
		return nil, err
	}
	r, ok := i.Rules[loc]
	if !ok {
		return nil, unix.ENOENT
	}
	c := *r
	return &c, nil
}

// InsertRxRule resolves special locations to the first or last free entry
func (k *FakeKernel) InsertRxRule(ifName string, rule *types.RxNFC) (uint32, error) {
	i, err := k.rules(types.CmdSRxClsRlIns, ifName)
	if err != nil {
		return 0, err
	}
	loc := rule.FS.Location
	if loc&types.RxClsLocSpecial != 0 {
		if !i.SpecLoc {
			return 0, unix.EINVAL
		}
		found := false
		for n := uint32(0); n < i.RuleTableSize; n++ {
			cand := n
			if loc == types.RxClsLocLast|types.RxClsLocSpecial || loc == types.RxClsLocAny {
				cand = i.RuleTableSize - 1 - n
			}
			if _, used := i.Rules[cand]; !used {
				loc, found = cand, true
				break
			}
		}
		if !found {
			return 0, unix.ENOSPC
		}
	} else if loc >= i.RuleTableSize {
		return 0, unix.EINVAL
	}
	c := *rule
	c.FS.Location = loc
	i.Rules[loc] = &c
	return loc, nil
}

func (k *FakeKernel) DeleteRxRule(ifName string, loc uint32) error {
	i, err := k.rules(types.CmdSRxClsRlDel, ifName)
	if err != nil {
		return err
	}
	if _, ok := i.Rules[loc]; !ok {
		return unix.ENOENT
	}
	delete(i.Rules, loc)
	return nil
}
