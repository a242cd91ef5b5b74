package net

import (
	"encoding/binary"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

// EthtoolProvider is a wrapper interface over the SIOCETHTOOL ioctl.
// Errors returned by the kernel are unix.Errno values.
type EthtoolProvider interface {
	// GetCoalesce returns interrupt coalescing parameters
	GetCoalesce(ifName string) (*types.Coalesce, error)
	// SetCoalesce sets interrupt coalescing parameters
	SetCoalesce(ifName string, c *types.Coalesce) error
	// GetPauseParam returns pause parameters
	GetPauseParam(ifName string) (*types.PauseParam, error)
	// SetPauseParam sets pause parameters
	SetPauseParam(ifName string, p *types.PauseParam) error
	// GetEEE returns Energy-Efficient Ethernet parameters
	GetEEE(ifName string) (*types.EEE, error)
	// SetEEE sets Energy-Efficient Ethernet parameters
	SetEEE(ifName string, e *types.EEE) error
	// GetRingParam returns ring parameters
	GetRingParam(ifName string) (*types.RingParam, error)
	// SetRingParam sets ring parameters
	SetRingParam(ifName string, r *types.RingParam) error
	// GetChannels returns channel counts
	GetChannels(ifName string) (*types.Channels, error)
	// SetChannels sets channel counts
	SetChannels(ifName string, c *types.Channels) error
	// GetPrivFlags returns private flags bitmap
	GetPrivFlags(ifName string) (uint32, error)
	// SetPrivFlags sets private flags bitmap
	SetPrivFlags(ifName string, flags uint32) error

	// GetLink returns link state
	GetLink(ifName string) (uint32, error)
	// RestartAutoneg restarts autonegotiation
	RestartAutoneg(ifName string) error
	// Reset resets device components given by flags, returns flags of components not reset
	Reset(ifName string, flags uint32) (uint32, error)

	// GetLegacySettings returns link settings with ETHTOOL_GSET
	GetLegacySettings(ifName string) (*types.LegacySettings, error)
	// SetLegacySettings sets link settings with ETHTOOL_SSET
	SetLegacySettings(ifName string, s *types.LegacySettings) error
	// GetLinkSettings returns link settings requesting nwords words per link mode mask.
	// Kernel replies with a negative word count if nwords does not match.
	GetLinkSettings(ifName string, nwords int8) (*types.LinkSettings, error)
	// SetLinkSettings sets link settings
	SetLinkSettings(ifName string, s *types.LinkSettings) error

	// GetStringSetLen returns the number of strings in set
	GetStringSetLen(ifName string, set types.StringSet) (uint32, error)
	// GetStrings returns count strings of set
	GetStrings(ifName string, set types.StringSet, count uint32) ([]string, error)
	// GetFeatures returns blocks of feature bitmaps
	GetFeatures(ifName string, blocks uint32) ([]types.FeatureBlock, error)
	// SetFeatures sets features selected by valid bits
	SetFeatures(ifName string, blocks []types.SetFeatureBlock) error

	// GetRxfh returns RSS configuration of rssContext. With zero sizes only
	// sizes are returned.
	GetRxfh(ifName string, rssContext, indirSize, keySize uint32) (*types.Rxfh, error)
	// SetRxfh sets RSS configuration
	SetRxfh(ifName string, rxfh *types.Rxfh) error

	// GetRxRuleCount returns number of Rx classification rules and the data word
	GetRxRuleCount(ifName string) (uint32, uint64, error)
	// GetRxRuleLocations returns the rule table size and up to count rule locations
	GetRxRuleLocations(ifName string, count uint32) (uint32, []uint32, error)
	// GetRxRule returns the rule at loc, RuleCnt of the reply carries the RSS context
	GetRxRule(ifName string, loc uint32) (*types.RxNFC, error)
	// InsertRxRule inserts rule.FS, with rule.RuleCnt as RSS context if FLOW_RSS is set.
	// Returns the location chosen by the kernel.
	InsertRxRule(ifName string, rule *types.RxNFC) (uint32, error)
	// DeleteRxRule deletes the rule at loc
	DeleteRxRule(ifName string, loc uint32) error
}

// NewEthtoolProviderImpl creates a new EthtoolProviderImpl
func NewEthtoolProviderImpl() *EthtoolProviderImpl {
	return &EthtoolProviderImpl{}
}

// EthtoolProviderImpl implements EthtoolProvider over SIOCETHTOOL.
// A socket is opened per request so that it belongs to the network
// namespace of the calling thread.
type EthtoolProviderImpl struct{}

type ifreq struct {
	name [unix.IFNAMSIZ]byte
	data unsafe.Pointer
	_    [16]byte
}

func (e *EthtoolProviderImpl) ioctl(ifName string, data []byte) error {
	if len(ifName) >= unix.IFNAMSIZ {
		return unix.ENAMETOOLONG
	}
	if len(data) == 0 {
		return unix.EINVAL
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return errors.Wrap(err, "failed to open control socket")
	}
	defer unix.Close(fd)

	ifr := ifreq{data: unsafe.Pointer(&data[0])}
	copy(ifr.name[:], ifName)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(unix.SIOCETHTOOL), uintptr(unsafe.Pointer(&ifr)))
	runtime.KeepAlive(data)
	if errno != 0 {
		return errno
	}
	return nil
}

// doStruct issues cmd with fixed size request v, v is updated with the reply
func (e *EthtoolProviderImpl) doStruct(ifName string, cmd types.Cmd, v interface{}) error {
	data, err := types.Encode(v)
	if err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(data, uint32(cmd))
	if err := e.ioctl(ifName, data); err != nil {
		return err
	}
	return types.Decode(data, v)
}

// GetCoalesce implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetCoalesce(ifName string) (*types.Coalesce, error) {
	c := &types.Coalesce{}
	if err := e.doStruct(ifName, types.CmdGCoalesce, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetCoalesce implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetCoalesce(ifName string, c *types.Coalesce) error {
	req := *c
	return e.doStruct(ifName, types.CmdSCoalesce, &req)
}

// GetPauseParam implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetPauseParam(ifName string) (*types.PauseParam, error) {
	p := &types.PauseParam{}
	if err := e.doStruct(ifName, types.CmdGPauseParam, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPauseParam implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetPauseParam(ifName string, p *types.PauseParam) error {
	req := *p
	return e.doStruct(ifName, types.CmdSPauseParam, &req)
}

// GetEEE implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetEEE(ifName string) (*types.EEE, error) {
	eee := &types.EEE{}
	if err := e.doStruct(ifName, types.CmdGEEE, eee); err != nil {
		return nil, err
	}
	return eee, nil
}

// SetEEE implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetEEE(ifName string, eee *types.EEE) error {
	req := *eee
	return e.doStruct(ifName, types.CmdSEEE, &req)
}

// GetRingParam implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetRingParam(ifName string) (*types.RingParam, error) {
	r := &types.RingParam{}
	if err := e.doStruct(ifName, types.CmdGRingParam, r); err != nil {
		return nil, err
	}
	return r, nil
}

// SetRingParam implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetRingParam(ifName string, r *types.RingParam) error {
	req := *r
	return e.doStruct(ifName, types.CmdSRingParam, &req)
}

// GetChannels implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetChannels(ifName string) (*types.Channels, error) {
	c := &types.Channels{}
	if err := e.doStruct(ifName, types.CmdGChannels, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetChannels implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetChannels(ifName string, c *types.Channels) error {
	req := *c
	return e.doStruct(ifName, types.CmdSChannels, &req)
}

// GetPrivFlags implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetPrivFlags(ifName string) (uint32, error) {
	v := &types.Value{}
	if err := e.doStruct(ifName, types.CmdGPFlags, v); err != nil {
		return 0, err
	}
	return v.Data, nil
}

// SetPrivFlags implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetPrivFlags(ifName string, flags uint32) error {
	return e.doStruct(ifName, types.CmdSPFlags, &types.Value{Data: flags})
}

// GetLink implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetLink(ifName string) (uint32, error) {
	v := &types.Value{}
	if err := e.doStruct(ifName, types.CmdGLink, v); err != nil {
		return 0, err
	}
	return v.Data, nil
}

// RestartAutoneg implements EthtoolProvider interface
func (e *EthtoolProviderImpl) RestartAutoneg(ifName string) error {
	return e.doStruct(ifName, types.CmdNwayRst, &types.Value{})
}

// Reset implements EthtoolProvider interface
func (e *EthtoolProviderImpl) Reset(ifName string, flags uint32) (uint32, error) {
	v := &types.Value{Data: flags}
	if err := e.doStruct(ifName, types.CmdReset, v); err != nil {
		return 0, err
	}
	return v.Data, nil
}

// GetLegacySettings implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetLegacySettings(ifName string) (*types.LegacySettings, error) {
	s := &types.LegacySettings{}
	if err := e.doStruct(ifName, types.CmdGSet, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLegacySettings implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetLegacySettings(ifName string, s *types.LegacySettings) error {
	req := *s
	return e.doStruct(ifName, types.CmdSSet, &req)
}

// GetLinkSettings implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetLinkSettings(ifName string, nwords int8) (*types.LinkSettings, error) {
	s := &types.LinkSettings{LinkModeMasksNwords: nwords}
	if err := e.doStruct(ifName, types.CmdGLinkSettings, s); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLinkSettings implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetLinkSettings(ifName string, s *types.LinkSettings) error {
	req := *s
	return e.doStruct(ifName, types.CmdSLinkSettings, &req)
}

// GetStringSetLen implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetStringSetLen(ifName string, set types.StringSet) (uint32, error) {
	info := &types.SSetInfo{SSetMask: 1 << uint64(set)}
	if err := e.doStruct(ifName, types.CmdGSSetInfo, info); err != nil {
		return 0, err
	}
	if info.SSetMask&(1<<uint64(set)) == 0 {
		return 0, nil
	}
	return info.Data, nil
}

// GetStrings implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetStrings(ifName string, set types.StringSet, count uint32) ([]string, error) {
	if count == 0 {
		return nil, nil
	}
	data := types.EncodeGetStrings(set, count)
	if err := e.ioctl(ifName, data); err != nil {
		return nil, err
	}
	return types.DecodeGetStrings(data)
}

// GetFeatures implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetFeatures(ifName string, blocks uint32) ([]types.FeatureBlock, error) {
	data := types.EncodeGetFeatures(blocks)
	if err := e.ioctl(ifName, data); err != nil {
		return nil, err
	}
	return types.DecodeGetFeatures(data)
}

// SetFeatures implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetFeatures(ifName string, blocks []types.SetFeatureBlock) error {
	return e.ioctl(ifName, types.EncodeSetFeatures(blocks))
}

// GetRxfh implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetRxfh(ifName string, rssContext, indirSize, keySize uint32) (*types.Rxfh, error) {
	req := &types.Rxfh{Cmd: types.CmdGRssh, RSSContext: rssContext, IndirSize: indirSize, KeySize: keySize}
	data, err := req.Encode()
	if err != nil {
		return nil, err
	}
	if err := e.ioctl(ifName, data); err != nil {
		return nil, err
	}
	if indirSize == 0 && keySize == 0 {
		return types.DecodeRxfh(data[:types.RxfhHeaderLen])
	}
	return types.DecodeRxfh(data)
}

// SetRxfh implements EthtoolProvider interface
func (e *EthtoolProviderImpl) SetRxfh(ifName string, rxfh *types.Rxfh) error {
	req := *rxfh
	req.Cmd = types.CmdSRssh
	data, err := req.Encode()
	if err != nil {
		return err
	}
	return e.ioctl(ifName, data)
}

func (e *EthtoolProviderImpl) doRxNFC(ifName string, req *types.RxNFC, locs uint32) (*types.RxNFC, error) {
	data, err := req.Encode(locs)
	if err != nil {
		return nil, err
	}
	if err := e.ioctl(ifName, data); err != nil {
		return nil, err
	}
	return types.DecodeRxNFC(data, locs)
}

// GetRxRuleCount implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetRxRuleCount(ifName string) (uint32, uint64, error) {
	reply, err := e.doRxNFC(ifName, &types.RxNFC{Cmd: types.CmdGRxClsRlCnt}, 0)
	if err != nil {
		return 0, 0, err
	}
	return reply.RuleCnt, reply.Data, nil
}

// GetRxRuleLocations implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetRxRuleLocations(ifName string, count uint32) (uint32, []uint32, error) {
	reply, err := e.doRxNFC(ifName, &types.RxNFC{Cmd: types.CmdGRxClsRlAll, RuleCnt: count}, count)
	if err != nil {
		return 0, nil, err
	}
	n := reply.RuleCnt
	if n > count {
		n = count
	}
	return uint32(reply.Data), reply.RuleLocs[:n], nil
}

// GetRxRule implements EthtoolProvider interface
func (e *EthtoolProviderImpl) GetRxRule(ifName string, loc uint32) (*types.RxNFC, error) {
	req := &types.RxNFC{Cmd: types.CmdGRxClsRule}
	req.FS.Location = loc
	return e.doRxNFC(ifName, req, 0)
}

// InsertRxRule implements EthtoolProvider interface
func (e *EthtoolProviderImpl) InsertRxRule(ifName string, rule *types.RxNFC) (uint32, error) {
	req := &types.RxNFC{Cmd: types.CmdSRxClsRlIns, FlowType: rule.FS.FlowType, FS: rule.FS, RuleCnt: rule.RuleCnt}
	reply, err := e.doRxNFC(ifName, req, 0)
	if err != nil {
		return 0, err
	}
	return reply.FS.Location, nil
}

// DeleteRxRule implements EthtoolProvider interface
func (e *EthtoolProviderImpl) DeleteRxRule(ifName string, loc uint32) error {
	req := &types.RxNFC{Cmd: types.CmdSRxClsRlDel}
	req.FS.Location = loc
	_, err := e.doRxNFC(ifName, req, 0)
	return err
}
