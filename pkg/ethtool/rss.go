package ethtool

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

const rssType = "rssh"

// rssHash is the shadow of RSS hash settings of one RSS context
type rssHash struct {
	rxfh        *types.Rxfh
	indirChange bool
	indirReset  bool
	keyChange   bool
	hfuncChange bool
}

func rssObjectName(ifName string, rssCtx uint32) string {
	return fmt.Sprintf("%s.%d", ifName, rssCtx)
}

func parseRSSContext(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errcode.New(errcode.Invalid, "invalid RSS context %q", s)
	}
	return uint32(v), nil
}

func (a *Agent) readRxfh(ifName string, rssCtx uint32) (*types.Rxfh, error) {
	sizes, err := a.eth.GetRxfh(ifName, rssCtx, 0, 0)
	if err != nil {
		return nil, a.native(err, types.CmdGRssh, ifName)
	}
	rxfh, err := a.eth.GetRxfh(ifName, rssCtx, sizes.IndirSize, sizes.KeySize)
	if err != nil {
		return nil, a.native(err, types.CmdGRssh, ifName)
	}
	return rxfh, nil
}

func (a *Agent) rssShadow(req *cfgtree.Request, forSet bool) (*rssHash, error) {
	ifName := req.IfName()
	rssCtx, err := parseRSSContext(req.Inst("context"))
	if err != nil {
		return nil, err
	}
	materialize := func(obj *cache.Object) error {
		rxfh, err := a.readRxfh(ifName, rssCtx)
		if err != nil {
			return err
		}
		obj.Payload = &rssHash{rxfh: rxfh}
		return nil
	}
	var obj *cache.Object
	if forSet {
		obj, err = a.shadowForSet(rssType, rssObjectName(ifName, rssCtx), req.GroupID, materialize)
	} else {
		obj, err = a.shadow(rssType, rssObjectName(ifName, rssCtx), req.GroupID, materialize)
	}
	if err != nil {
		return nil, err
	}
	return obj.Payload.(*rssHash), nil
}

func (a *Agent) rssNode() *cfgtree.Node {
	hashIndir := cfgtree.NewNodeBuilder("hash_indir").
		WithCommit(a.rssCommit).
		WithChildren(
			cfgtree.NewNodeBuilder("hash_key").WithGet(a.rssKeyGet).WithSet(a.rssKeySet).Build(),
			cfgtree.NewNodeBuilder("hash_func").
				WithList(a.rssFuncList).
				WithGet(a.rssFuncGet).
				WithSet(a.rssFuncSet).
				Build(),
			cfgtree.NewNodeBuilder("indir").
				WithList(a.rssIndirList).
				WithGet(a.rssIndirGet).
				WithSet(a.rssIndirSet).
				Build(),
			cfgtree.NewNodeBuilder("indir_default").
				WithGet(a.rssIndirDefaultGet).
				WithSet(a.rssIndirDefaultSet).
				Build(),
		).
		Build()
	ctxNode := cfgtree.NewNodeBuilder("context").
		WithList(a.rssContextList).
		WithChildren(hashIndir).
		Build()
	return cfgtree.NewNodeBuilder("rss").WithChildren(ctxNode).Build()
}

// rssContextList lists the default context if the interface supports RSS
func (a *Agent) rssContextList(req *cfgtree.Request) ([]string, error) {
	ifName := req.IfName()
	if _, err := a.eth.GetRxfh(ifName, 0, 0, 0); err != nil {
		return nil, a.native(err, types.CmdGRssh, ifName)
	}
	return []string{"0"}, nil
}

func (a *Agent) rssKeyGet(req *cfgtree.Request) (string, error) {
	h, err := a.rssShadow(req, false)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.rxfh.Key), nil
}

func (a *Agent) rssKeySet(req *cfgtree.Request, value string) error {
	key, err := hex.DecodeString(value)
	if err != nil {
		return errcode.New(errcode.Invalid, "invalid hash key %q", value)
	}
	h, err := a.rssShadow(req, true)
	if err != nil {
		return err
	}
	if len(key) != int(h.rxfh.KeySize) {
		return errcode.New(errcode.Invalid, "hash key must be %d bytes long, got %d", h.rxfh.KeySize, len(key))
	}
	h.rxfh.Key = key
	h.keyChange = true
	return nil
}

func (a *Agent) rssFuncList(req *cfgtree.Request) ([]string, error) {
	return a.stringSet(req.GroupID, req.IfName(), types.StringSetRssHashFuncs)
}

// rssFuncBit returns the bit of the hash function named in req
func (a *Agent) rssFuncBit(req *cfgtree.Request) (uint8, error) {
	names, err := a.stringSet(req.GroupID, req.IfName(), types.StringSetRssHashFuncs)
	if err != nil {
		return 0, err
	}
	idx, err := stringIndex(names, req.Inst("hash_func"))
	if err != nil {
		return 0, err
	}
	if idx >= 8 {
		return 0, errcode.New(errcode.Range, "hash function %s has index %d", req.Inst("hash_func"), idx)
	}
	return 1 << idx, nil
}

func (a *Agent) rssFuncGet(req *cfgtree.Request) (string, error) {
	bit, err := a.rssFuncBit(req)
	if errcode.Is(err, errcode.NotFound) {
		return "0", nil
	}
	if err != nil {
		return "", err
	}
	h, err := a.rssShadow(req, false)
	if err != nil {
		return "", err
	}
	return formatBool(h.rxfh.HFunc&bit != 0), nil
}

func (a *Agent) rssFuncSet(req *cfgtree.Request, value string) error {
	on, err := parseBool(value)
	if err != nil {
		return err
	}
	bit, err := a.rssFuncBit(req)
	if err != nil {
		return err
	}
	h, err := a.rssShadow(req, true)
	if err != nil {
		return err
	}
	if on {
		h.rxfh.HFunc |= bit
	} else {
		h.rxfh.HFunc &^= bit
	}
	h.hfuncChange = true
	return nil
}

func (a *Agent) rssIndirList(req *cfgtree.Request) ([]string, error) {
	h, err := a.rssShadow(req, false)
	if err != nil {
		return nil, err
	}
	idx := make([]string, 0, len(h.rxfh.Indir))
	for i := range h.rxfh.Indir {
		idx = append(idx, strconv.Itoa(i))
	}
	return idx, nil
}

func (h *rssHash) indirEntry(s string) (*uint32, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 || i >= len(h.rxfh.Indir) {
		return nil, errcode.New(errcode.Invalid, "invalid indirection table index %q", s)
	}
	return &h.rxfh.Indir[i], nil
}

func (a *Agent) rssIndirGet(req *cfgtree.Request) (string, error) {
	h, err := a.rssShadow(req, false)
	if err != nil {
		return "", err
	}
	e, err := h.indirEntry(req.Inst("indir"))
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(*e), 10), nil
}

func (a *Agent) rssIndirSet(req *cfgtree.Request, value string) error {
	queue, err := parseUint32(value)
	if err != nil {
		return err
	}
	h, err := a.rssShadow(req, true)
	if err != nil {
		return err
	}
	e, err := h.indirEntry(req.Inst("indir"))
	if err != nil {
		return err
	}
	*e = queue
	h.indirChange = true
	return nil
}

func (a *Agent) rssIndirDefaultGet(req *cfgtree.Request) (string, error) {
	h, err := a.rssShadow(req, false)
	if err != nil {
		return "", err
	}
	return formatBool(h.indirReset), nil
}

func (a *Agent) rssIndirDefaultSet(req *cfgtree.Request, value string) error {
	reset, err := parseBool(value)
	if err != nil {
		return err
	}
	h, err := a.rssShadow(req, true)
	if err != nil {
		return err
	}
	h.indirReset = reset
	return nil
}

func (a *Agent) rssCommit(gid uint32, oid cfgtree.OID) error {
	ifName := oid.Inst(InterfaceNode)
	rssCtx, err := parseRSSContext(oid.Inst("context"))
	if err != nil {
		return err
	}
	return a.commitShadow(rssType, rssObjectName(ifName, rssCtx), gid, func(obj *cache.Object) error {
		h := obj.Payload.(*rssHash)
		req := &types.Rxfh{
			RSSContext: rssCtx,
			IndirSize:  types.RxfhIndirNoChange,
		}
		switch {
		case h.indirReset:
			req.IndirSize = 0
		case h.indirChange:
			req.IndirSize = uint32(len(h.rxfh.Indir))
			req.Indir = h.rxfh.Indir
		}
		if h.keyChange {
			req.KeySize = h.rxfh.KeySize
			req.Key = h.rxfh.Key
		}
		if h.hfuncChange {
			req.HFunc = h.rxfh.HFunc
		}
		return a.native(a.eth.SetRxfh(ifName, req), types.CmdSRssh, ifName)
	})
}
