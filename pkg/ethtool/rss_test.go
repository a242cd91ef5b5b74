package ethtool_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/testutil"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

var _ = Describe("RSS tests", func() {
	var env *testEnv
	const hash = eth0 + "/rss:/context:0/hash_indir:"

	BeforeEach(func() {
		env = newTestEnv(&testutil.FakeInterface{
			Channels:      &types.Channels{MaxCombined: 4, CombinedCount: 2},
			HashFuncNames: []string{"toeplitz", "xor", "crc32"},
			Rxfh: &types.Rxfh{
				Indir: []uint32{0, 1, 2, 3, 0, 1, 2, 3},
				Key:   []byte{0x6d, 0x5a, 0x56, 0xda},
				HFunc: 0x1,
			},
		})
	})

	It("lists the default context", func() {
		Expect(env.tree.List(1, eth0+"/rss:", "context")).To(Equal([]string{"0"}))
	})

	It("is not listed without RSS", func() {
		env.iface.Rxfh = nil
		Expect(env.tree.List(1, eth0+"/rss:", "context")).To(BeEmpty())
	})

	It("reads the hash settings", func() {
		Expect(env.tree.Get(1, hash+"/hash_key:")).To(Equal("6d5a56da"))
		Expect(env.tree.List(1, hash, "indir")).To(HaveLen(8))
		Expect(env.tree.Get(1, hash+"/indir:5")).To(Equal("1"))
		Expect(env.tree.Get(1, hash+"/hash_func:toeplitz")).To(Equal("1"))
		Expect(env.tree.Get(1, hash+"/hash_func:xor")).To(Equal("0"))
		Expect(env.tree.Get(1, hash+"/hash_func:unknown")).To(Equal("0"))
		Expect(env.tree.Get(1, hash+"/indir_default:")).To(Equal("0"))
	})

	It("changes only what was set", func() {
		Expect(env.tree.Set(1, hash+"/indir:0", "3")).To(Succeed())
		Expect(env.tree.Set(1, hash+"/indir:7", "0")).To(Succeed())
		Expect(env.tree.Commit(1)).To(Succeed())

		Expect(env.iface.Rxfh.Indir).To(Equal([]uint32{3, 1, 2, 3, 0, 1, 2, 0}))
		Expect(env.iface.Rxfh.Key).To(Equal([]byte{0x6d, 0x5a, 0x56, 0xda}))
		Expect(env.iface.Rxfh.HFunc).To(BeEquivalentTo(0x1))
		Expect(env.kernel.CallCount(types.CmdSRssh, "eth0")).To(Equal(1))
	})

	It("changes the key and the hash function", func() {
		Expect(env.tree.Set(1, hash+"/hash_key:", "01020304")).To(Succeed())
		Expect(env.tree.Set(1, hash+"/hash_func:toeplitz", "0")).To(Succeed())
		Expect(env.tree.Set(1, hash+"/hash_func:xor", "1")).To(Succeed())
		Expect(env.tree.Commit(1)).To(Succeed())

		Expect(env.iface.Rxfh.Key).To(Equal([]byte{1, 2, 3, 4}))
		Expect(env.iface.Rxfh.HFunc).To(BeEquivalentTo(0x2))
	})

	It("restores the default table", func() {
		Expect(env.tree.Set(1, hash+"/indir_default:", "1")).To(Succeed())
		Expect(env.tree.Commit(1)).To(Succeed())
		Expect(env.iface.Rxfh.Indir).To(Equal([]uint32{0, 1, 0, 1, 0, 1, 0, 1}))
	})

	It("validates values", func() {
		Expect(errcode.KindOf(env.tree.Set(1, hash+"/hash_key:", "0102"))).To(Equal(errcode.Invalid))
		Expect(errcode.KindOf(env.tree.Set(1, hash+"/hash_key:", "zz"))).To(Equal(errcode.Invalid))
		Expect(errcode.KindOf(env.tree.Set(1, hash+"/indir:8", "1"))).To(Equal(errcode.Invalid))
		Expect(errcode.KindOf(env.tree.Set(1, hash+"/hash_func:md5", "1"))).To(Equal(errcode.NotFound))
		_, err := env.tree.Get(1, eth0+"/rss:/context:x/hash_indir:/hash_key:")
		Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
	})
})
