package ethtool_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/pointer"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/testutil"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

func tcpRule(loc uint32, dstPort uint16, queue uint64) *types.RxNFC {
	r := &types.RxNFC{}
	r.FS.FlowType = types.FlowTCPv4
	r.FS.HU[types.OffIP4PDst] = byte(dstPort >> 8)
	r.FS.HU[types.OffIP4PDst+1] = byte(dstPort)
	r.FS.MU[types.OffIP4PDst] = 0xff
	r.FS.MU[types.OffIP4PDst+1] = 0xff
	r.FS.RingCookie = queue
	r.FS.Location = loc
	return r
}

var _ = Describe("Rx classification rule tests", func() {
	var env *testEnv
	const rules = eth0 + "/rx_rules:"
	const rule = rules + "/rule:"

	BeforeEach(func() {
		env = newTestEnv(&testutil.FakeInterface{
			RuleTableSize: 16,
			SpecLoc:       true,
			Rules:         map[uint32]*types.RxNFC{2: tcpRule(2, 80, 3)},
		})
	})

	Context("rule table", func() {
		It("lists rules and table properties", func() {
			Expect(env.tree.List(1, rules, "rule")).To(Equal([]string{"2"}))
			Expect(env.tree.Get(1, rules+"/table_size:")).To(Equal("16"))
			Expect(env.tree.Get(1, rules+"/spec_loc:")).To(Equal("1"))
			_, err := env.tree.Get(1, rules+"/last_added:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("is empty when the driver has no classifier", func() {
			env.iface.RulesUnsupported = true
			Expect(env.tree.List(1, rules, "rule")).To(BeEmpty())
			_, err := env.tree.Get(1, rules+"/table_size:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})
	})

	Context("existing rules", func() {
		It("reads rule fields", func() {
			Expect(env.tree.Get(1, rule+"2/flow_spec:")).To(Equal("tcp_v4"))
			Expect(env.tree.Get(1, rule+"2/flow_spec:/dst_port:")).To(Equal("80"))
			Expect(env.tree.Get(1, rule+"2/flow_spec:/dst_port:/mask:")).To(Equal("65535"))
			Expect(env.tree.Get(1, rule+"2/flow_spec:/src_l3_addr:")).To(Equal("0.0.0.0"))
			Expect(env.tree.Get(1, rule+"2/rx_queue:")).To(Equal("3"))
			Expect(env.tree.Get(1, rule+"2/rss_context:")).To(Equal("-1"))
			Expect(env.tree.Get(1, rule+"2/flow_spec:/vlan_tci:")).To(Equal("0"))
		})

		It("fails for missing rules", func() {
			_, err := env.tree.Get(1, rule+"4/rx_queue:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("refuses fields the flow type does not carry", func() {
			_, err := env.tree.Get(1, rule+"2/flow_spec:/ether_type:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})

		It("modifies a rule in place", func() {
			Expect(env.tree.Set(1, rule+"2/rx_queue:", "5")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())
			Expect(env.iface.Rules).To(HaveLen(1))
			Expect(env.iface.Rules[2].FS.RingCookie).To(BeEquivalentTo(5))
			_, err := env.tree.Get(1, rules+"/last_added:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("deletes a rule immediately", func() {
			Expect(env.tree.Del(1, rule+"2")).To(Succeed())
			Expect(env.iface.Rules).To(BeEmpty())
			Expect(env.tree.Commit(1)).To(Succeed())
		})

		It("lists the current table after changes in the same group", func() {
			Expect(env.tree.List(1, rules, "rule")).To(Equal([]string{"2"}))
			Expect(env.tree.Del(1, rule+"2")).To(Succeed())
			Expect(env.tree.List(1, rules, "rule")).To(BeEmpty())
		})

		It("deletes by number only", func() {
			err := env.tree.Del(1, rule+"any")
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})
	})

	Context("adding rules", func() {
		It("inserts a rule at a location chosen by the kernel", func() {
			Expect(env.tree.Add(1, rule+"any", "udp_v4")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/flow_spec:/dst_l3_addr:", "10.0.0.1")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/flow_spec:/dst_l3_addr:/mask:", "255.255.255.255")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/flow_spec:/src_port:", "53")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/rx_queue:", "-1")).To(Succeed())
			Expect(env.tree.Pending(1)).To(Equal([]string{rule + "any"}))
			Expect(env.tree.Commit(1)).To(Succeed())

			Expect(env.tree.Get(2, rules+"/last_added:")).To(Equal("15"))
			_, err := env.tree.Get(2, "/agent:ta/interface:eth1/rx_rules:/last_added:")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))

			fs := env.iface.Rules[15].FS
			Expect(fs.FlowType).To(Equal(types.FlowUDPv4))
			Expect(fs.RingCookie).To(Equal(types.RxClsFlowDisc))
			Expect(fs.HU[types.OffIP4Dst : types.OffIP4Dst+4]).To(Equal([]byte{10, 0, 0, 1}))
			Expect(fs.MU[types.OffIP4Dst : types.OffIP4Dst+4]).To(Equal([]byte{0xff, 0xff, 0xff, 0xff}))
			Expect(fs.HU[types.OffIP4PSrc : types.OffIP4PSrc+2]).To(Equal([]byte{0, 53}))
			Expect(env.tree.Get(2, rule+"15/flow_spec:/src_port:")).To(Equal("53"))
		})

		It("takes the flow type from flow_spec when added with a location value", func() {
			Expect(env.tree.Add(1, rule+"any", "any")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/flow_spec:", "tcp_v4")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/flow_spec:/dst_port:", "80")).To(Succeed())
			Expect(env.tree.Set(1, rule+"any/rx_queue:", "3")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())

			Expect(env.tree.Get(1, rules+"/last_added:")).To(Equal("15"))
			Expect(env.tree.List(1, rules, "rule")).To(ContainElement("15"))
			Expect(env.iface.Rules[15].FS.FlowType).To(Equal(types.FlowTCPv4))
			Expect(env.iface.Rules[15].FS.RingCookie).To(BeEquivalentTo(3))
		})

		It("reports the added rule when the group also changes another rule", func() {
			Expect(env.tree.Set(1, rule+"2/rx_queue:", "5")).To(Succeed())
			Expect(env.tree.Add(1, rule+"any", "tcp_v4")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())

			Expect(env.tree.Get(1, rules+"/last_added:")).To(Equal("15"))
			Expect(env.iface.Rules[2].FS.RingCookie).To(BeEquivalentTo(5))
			Expect(env.tree.List(1, rules, "rule")).To(Equal([]string{"2", "15"}))
		})

		It("refuses special locations the driver cannot choose", func() {
			env.iface.SpecLoc = false
			err := env.tree.Add(1, rule+"any", "tcp_v4")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotSupported))
			Expect(env.tree.Add(2, rule+"7", "tcp_v4")).To(Succeed())
		})

		It("allows one addition at a time", func() {
			Expect(env.tree.Add(1, rule+"first", "tcp_v4")).To(Succeed())
			err := env.tree.Add(1, rule+"last", "tcp_v4")
			Expect(errcode.KindOf(err)).To(Equal(errcode.InProgress))

			Expect(env.tree.Commit(1)).To(Succeed())
			Expect(env.tree.Get(1, rules+"/last_added:")).To(Equal("0"))
			Expect(env.tree.Add(2, rule+"last", "tcp_v4")).To(Succeed())
		})

		It("clears the in-progress flag when the insertion fails", func() {
			Expect(env.tree.Add(1, rule+"20", "tcp_v4")).To(Succeed())
			Expect(env.tree.Commit(1)).ToNot(Succeed())
			Expect(env.tree.Add(2, rule+"3", "tcp_v4")).To(Succeed())
		})

		It("forgets an addition whose shadow was dropped", func() {
			Expect(env.tree.Add(1, rule+"3", "tcp_v4")).To(Succeed())
			env.tree.Discard(1)
			env.cache.Cleanup()
			Expect(env.tree.Add(2, rule+"4", "tcp_v4")).To(Succeed())
		})

		It("rejects rules without a flow type", func() {
			Expect(env.tree.Add(1, rule+"3", "")).To(Succeed())
			err := env.tree.Commit(1)
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})

		It("rejects invalid locations and flow types", func() {
			Expect(errcode.KindOf(env.tree.Add(1, rule+"middle", "tcp_v4"))).To(Equal(errcode.Invalid))
			Expect(errcode.KindOf(env.tree.Add(1, rule+"3", "icmp"))).To(Equal(errcode.Invalid))
		})

		It("sets extension flags", func() {
			Expect(env.tree.Add(1, rule+"3", "tcp_v4")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/dst_mac:", "aa:bb:cc:dd:ee:ff")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/vlan_tci:", "100")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/vlan_tci:/mask:", "4095")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())

			fs := env.iface.Rules[3].FS
			Expect(fs.FlowType).To(Equal(types.FlowTCPv4 | types.FlowExt | types.FlowMacExt))
			Expect(fs.HExt[types.OffExtHDest : types.OffExtHDest+6]).To(Equal([]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}))
			Expect(fs.HExt[types.OffExtVlanTCI : types.OffExtVlanTCI+2]).To(Equal([]byte{0, 100}))
			Expect(fs.MExt[types.OffExtVlanTCI : types.OffExtVlanTCI+2]).To(Equal([]byte{0x0f, 0xff}))

			Expect(env.tree.Get(2, rule+"3/flow_spec:/dst_mac:")).To(Equal("aa:bb:cc:dd:ee:ff"))
			Expect(env.tree.Get(2, rule+"3/flow_spec:/vlan_tci:/mask:")).To(Equal("4095"))
		})

		It("keeps the destination MAC of ether rules in the flow", func() {
			Expect(env.tree.Add(1, rule+"3", "ether")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/dst_mac:", "02:00:00:00:00:01")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/ether_type:", "2048")).To(Succeed())
			err := env.tree.Set(1, rule+"3/flow_spec:/src_port:", "1")
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
			Expect(env.tree.Commit(1)).To(Succeed())

			fs := env.iface.Rules[3].FS
			Expect(fs.FlowType).To(Equal(types.FlowEther))
			Expect(fs.HU[types.OffEthDst : types.OffEthDst+6]).To(Equal([]byte{2, 0, 0, 0, 0, 1}))
			Expect(fs.HU[types.OffEthProto : types.OffEthProto+2]).To(Equal([]byte{0x08, 0x00}))
		})

		It("fills IP version and protocol of user IPv4 rules", func() {
			Expect(env.tree.Add(1, rule+"3", "ipv4_user")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/l4_proto:", "17")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/l4_proto:/mask:", "255")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/rss_context:", "1")).To(Succeed())
			Expect(env.tree.Commit(1)).To(Succeed())

			r := env.iface.Rules[3]
			Expect(r.FS.FlowType).To(Equal(types.FlowIPv4 | types.FlowRSS))
			Expect(r.RuleCnt).To(BeEquivalentTo(1))
			Expect(r.FS.HU[types.OffIP4IPVer]).To(Equal(types.RxNfcIPv4))
			Expect(r.FS.HU[types.OffIP4Proto]).To(BeEquivalentTo(17))
			Expect(r.FS.MU[types.OffIP4IPVer]).To(BeZero())
			Expect(r.FS.MU[types.OffIP4Proto]).To(BeZero())
			Expect(env.tree.Get(2, rule+"3/rss_context:")).To(Equal("1"))
		})

		It("parses addresses of the rule family", func() {
			Expect(env.tree.Add(1, rule+"3", "tcp_v6")).To(Succeed())
			Expect(env.tree.Set(1, rule+"3/flow_spec:/src_l3_addr:", "fe80::1")).To(Succeed())
			Expect(env.tree.Get(1, rule+"3/flow_spec:/src_l3_addr:")).To(Equal("fe80::1"))
			err := env.tree.Set(1, rule+"3/flow_spec:/dst_l3_addr:", "10.0.0.1")
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})

		It("bounds values by the field width", func() {
			Expect(env.tree.Add(1, rule+"3", "tcp_v4")).To(Succeed())
			Expect(errcode.KindOf(env.tree.Set(1, rule+"3/flow_spec:/dst_port:", "65536"))).To(Equal(errcode.Invalid))
			Expect(errcode.KindOf(env.tree.Set(1, rule+"3/flow_spec:/tos_or_tclass:", "256"))).To(Equal(errcode.Invalid))
			Expect(errcode.KindOf(env.tree.Set(1, rule+"3/flow_spec:/dst_mac:", "aa:bb"))).To(Equal(errcode.Invalid))
			Expect(errcode.KindOf(env.tree.Set(1, rule+"3/rss_context:", "-2"))).To(Equal(errcode.Invalid))
		})
	})

	DescribeTable("stores single field matches",
		func(field, value string, mask *string, expectedMask string) {
			Expect(env.tree.Add(1, rule+"5", "tcp_v4")).To(Succeed())
			Expect(env.tree.Set(1, rule+"5/flow_spec:/"+field+":", value)).To(Succeed())
			if mask != nil {
				Expect(env.tree.Set(1, rule+"5/flow_spec:/"+field+":/mask:", *mask)).To(Succeed())
			}
			Expect(env.tree.Commit(1)).To(Succeed())

			Expect(env.tree.Get(2, rule+"5/flow_spec:/"+field+":")).To(Equal(value))
			Expect(env.tree.Get(2, rule+"5/flow_spec:/"+field+":/mask:")).To(Equal(expectedMask))
		},
		Entry("source port with mask", "src_port", "443", pointer.String("65535"), "65535"),
		Entry("partial port mask", "dst_port", "8080", pointer.String("65280"), "65280"),
		Entry("tos without mask", "tos_or_tclass", "16", nil, "0"),
		Entry("source address with mask", "src_l3_addr", "10.0.0.1", pointer.String("255.255.255.0"), "255.255.255.0"),
	)
})
