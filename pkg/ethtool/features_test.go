package ethtool_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/testutil"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

var _ = Describe("Feature and private flag tests", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv(&testutil.FakeInterface{
			FeatureNames: []string{"rx-checksum", "tx-checksum-ipv4", "rx-gro", "highdma"},
			Features: []types.FeatureBlock{{
				Available:    0x7,
				Requested:    0x3,
				Active:       0xb,
				NeverChanged: 0x8,
			}},
			PrivFlagNames: []string{"legacy-rx", "vf-true-promisc-support"},
			PrivFlags:     0x1,
		})
	})

	Context("features", func() {
		const feature = eth0 + "/feature:"

		It("lists features in kernel order", func() {
			Expect(env.tree.List(1, eth0, "feature")).To(Equal(
				[]string{"rx-checksum", "tx-checksum-ipv4", "rx-gro", "highdma"}))
		})

		It("reports state and changeability", func() {
			Expect(env.tree.Get(1, feature+"rx-gro")).To(Equal("0"))
			Expect(env.tree.Get(1, feature+"highdma")).To(Equal("1"))
			Expect(env.tree.Get(1, feature+"highdma/readonly:")).To(Equal("1"))
			Expect(env.tree.Get(1, feature+"rx-gro/readonly:")).To(Equal("0"))
		})

		It("refuses read-only features", func() {
			err := env.tree.Set(1, feature+"highdma", "0")
			Expect(errcode.KindOf(err)).To(Equal(errcode.PermissionDenied))
		})

		It("fails for unknown features", func() {
			_, err := env.tree.Get(1, feature+"rx-foo")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("applies changed features only", func() {
			Expect(env.tree.Set(1, feature+"rx-gro", "1")).To(Succeed())
			Expect(env.tree.Set(1, feature+"rx-checksum", "0")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())

			Expect(env.iface.Features[0].Active).To(BeEquivalentTo(0xe))
			Expect(env.tree.Get(2, feature+"rx-gro")).To(Equal("1"))
		})

		It("reads features from the kernel once", func() {
			Expect(env.tree.Get(1, feature+"rx-gro")).To(Equal("0"))
			Expect(env.tree.Get(2, feature+"rx-checksum")).To(Equal("1"))
			Expect(env.kernel.CallCount(types.CmdGFeatures, "eth0")).To(Equal(1))
		})

		It("is idempotent when committed twice", func() {
			Expect(env.tree.Set(1, feature+"rx-gro", "1")).To(Succeed())
			Expect(env.tree.CommitOID(1, feature+"rx-gro")).To(Succeed())
			Expect(env.tree.CommitOID(1, feature+"rx-gro")).To(Succeed())
			Expect(env.iface.Features[0].Active).To(BeEquivalentTo(0xf))
			Expect(env.kernel.CallCount(types.CmdSFeatures, "eth0")).To(Equal(2))
		})

		It("fails to commit features never read", func() {
			err := env.tree.CommitOID(1, "/agent:ta/interface:eth1/feature:rx-gro")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})
	})

	Context("private flags", func() {
		const pflag = eth0 + "/pflag:"

		It("lists flags", func() {
			Expect(env.tree.List(1, eth0, "pflag")).To(Equal([]string{"legacy-rx", "vf-true-promisc-support"}))
		})

		It("applies all changed flags with one request", func() {
			Expect(env.tree.Get(1, pflag+"legacy-rx")).To(Equal("1"))
			Expect(env.tree.Set(1, pflag+"legacy-rx", "0")).To(Succeed())
			Expect(env.tree.Set(1, pflag+"vf-true-promisc-support", "1")).To(Succeed())
			Expect(env.tree.Pending(1)).To(HaveLen(2))

			Expect(env.tree.Commit(1)).To(Succeed())
			Expect(env.iface.PrivFlags).To(BeEquivalentTo(0x2))
			Expect(env.kernel.CallCount(types.CmdSPFlags, "eth0")).To(Equal(1))
		})

		It("fails for unknown flags", func() {
			err := env.tree.Set(1, pflag+"foo", "1")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("is not listed without flags", func() {
			env.iface.PrivFlagNames = nil
			Expect(env.tree.List(1, eth0, "pflag")).To(BeEmpty())
		})
	})
})
