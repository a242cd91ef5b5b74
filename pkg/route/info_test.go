package route_test

import (
	"net"

	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/route"
)

var _ = Describe("Route parser tests", func() {
	Context("ParseInstance", func() {
		It("parses IPv4 instance with defaults", func() {
			info, err := route.ParseInstance("10.0.0.0|8")
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Family).To(Equal(unix.AF_INET))
			Expect(info.Dst.Equal(net.ParseIP("10.0.0.0"))).To(BeTrue())
			Expect(info.Prefix).To(Equal(8))
			Expect(info.Table).To(Equal(route.DefaultTable))
			Expect(info.Type).To(Equal(route.TypeUnicast))
			Expect(info.Flags).To(BeZero())
		})

		It("parses IPv6 instance with metric tos and table", func() {
			info, err := route.ParseInstance("fe80::|64,metric=10,tos=4,table=100")
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Family).To(Equal(unix.AF_INET6))
			Expect(info.Prefix).To(Equal(64))
			Expect(info.Metric).To(Equal(10))
			Expect(info.Tos).To(Equal(4))
			Expect(info.Table).To(Equal(100))
			Expect(info.Has(route.FlagMetric | route.FlagTos | route.FlagTable)).To(BeTrue())
		})

		DescribeTable("rejects invalid instance names",
			func(name string) {
				_, err := route.ParseInstance(name)
				Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
			},
			Entry("no separator", "10.0.0.0/8"),
			Entry("bad address", "10.0.0.300|8"),
			Entry("negative prefix", "10.0.0.0|-1"),
			Entry("no prefix digits", "10.0.0.0|x"),
			Entry("IPv4 prefix too long", "10.0.0.0|33"),
			Entry("IPv6 prefix too long", "::|129"),
		)

		It("formats instance name omitting defaults", func() {
			for _, name := range []string{"10.0.0.0|8", "fe80::|64,metric=10,tos=4,table=100", "0.0.0.0|0,metric=5"} {
				info, err := route.ParseInstance(name)
				Expect(err).ToNot(HaveOccurred())
				Expect(info.InstanceName()).To(Equal(name))
			}
		})
	})

	Context("ParseValue", func() {
		It("sets gateway", func() {
			info := &route.Info{}
			Expect(info.ParseValue("10.0.0.1")).To(Succeed())
			Expect(info.Has(route.FlagGateway)).To(BeTrue())
			Expect(info.Gateway.String()).To(Equal("10.0.0.1"))
		})

		It("clears gateway for empty or unspecified value", func() {
			info := &route.Info{Flags: route.FlagGateway, Gateway: net.ParseIP("10.0.0.1")}
			Expect(info.ParseValue("")).To(Succeed())
			Expect(info.Has(route.FlagGateway)).To(BeFalse())
			Expect(info.ParseValue("::")).To(Succeed())
			Expect(info.Has(route.FlagGateway)).To(BeFalse())
		})

		It("fails on invalid address", func() {
			info := &route.Info{}
			Expect(errcode.KindOf(info.ParseValue("gw"))).To(Equal(errcode.Invalid))
			Expect(info.Has(route.FlagGateway)).To(BeFalse())
		})
	})

	Context("ParseAttrs", func() {
		It("applies attributes", func() {
			info := &route.Info{Type: route.TypeBlackhole}
			err := info.ParseAttrs([]cache.Attr{
				{Name: "dev", Value: "eth0"},
				{Name: "mtu", Value: "1400"},
				{Name: "win", Value: "16"},
				{Name: "hoplimit", Value: "64"},
				{Name: "src", Value: "10.0.0.2"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Dev).To(Equal("eth0"))
			Expect(info.MTU).To(BeEquivalentTo(1400))
			Expect(info.Win).To(BeEquivalentTo(16))
			Expect(info.Hoplimit).To(BeEquivalentTo(64))
			Expect(info.Src.String()).To(Equal("10.0.0.2"))
			Expect(info.Type).To(Equal(route.TypeUnicast))
			Expect(info.Has(route.FlagDev | route.FlagMTU | route.FlagWin | route.FlagHoplimit | route.FlagSrc)).To(BeTrue())
			Expect(info.Has(route.FlagIRTT)).To(BeFalse())
		})

		It("reads leading zeros as decimal", func() {
			info := &route.Info{}
			Expect(info.ParseAttr("hoplimit", "010")).To(Succeed())
			Expect(info.Hoplimit).To(BeEquivalentTo(10))
		})

		It("ignores empty dev", func() {
			info := &route.Info{}
			Expect(info.ParseAttr("dev", "")).To(Succeed())
			Expect(info.Has(route.FlagDev)).To(BeFalse())
		})

		DescribeTable("rejects invalid attributes",
			func(name, value string) {
				info := &route.Info{}
				Expect(errcode.KindOf(info.ParseAttr(name, value))).To(Equal(errcode.Invalid))
			},
			Entry("long dev", "dev", "abcdefghijklmnopq"),
			Entry("empty mtu", "mtu", ""),
			Entry("negative mtu", "mtu", "-1"),
			Entry("trailing junk", "irtt", "10ms"),
			Entry("hex mtu", "mtu", "0x10"),
			Entry("digit separators", "win", "1_0"),
			Entry("unknown type", "type", "bogus"),
			Entry("bad src", "src", "10.0.0"),
			Entry("unknown attribute", "realm", "1"),
		)

		It("parses all type names", func() {
			for _, name := range []string{"unicast", "local", "broadcast", "anycast", "multicast",
				"blackhole", "unreachable", "prohibit", "throw", "nat"} {
				t, err := route.ParseType(name)
				Expect(err).ToNot(HaveOccurred())
				Expect(t.String()).To(Equal(name))
			}
		})
	})
})
