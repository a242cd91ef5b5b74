package cfgtree_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

var _ = Describe("OID tests", func() {
	It("parses instance identifier", func() {
		oid, err := cfgtree.ParseOID("/agent:ta/interface:eth0/coalesce:/global:/param:rx_coalesce_usecs")
		Expect(err).ToNot(HaveOccurred())
		Expect(oid).To(HaveLen(5))
		Expect(oid.Inst("interface")).To(Equal("eth0"))
		Expect(oid.Last()).To(Equal(cfgtree.SubID{Name: "param", Inst: "rx_coalesce_usecs"}))
		Expect(oid.ObjectPath()).To(Equal("/agent/interface/coalesce/global/param"))
		Expect(oid.String()).To(Equal("/agent:ta/interface:eth0/coalesce:/global:/param:rx_coalesce_usecs"))
	})

	It("keeps ':' inside instance names", func() {
		oid, err := cfgtree.ParseOID("/agent:ta/route:fe80::|64")
		Expect(err).ToNot(HaveOccurred())
		Expect(oid.Inst("route")).To(Equal("fe80::|64"))
	})

	It("rejects malformed identifiers", func() {
		for _, s := range []string{"", "agent:ta", "/agent:ta//x:"} {
			_, err := cfgtree.ParseOID(s)
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid), s)
		}
	})

	It("builds child and prefix copies", func() {
		oid, err := cfgtree.ParseOID("/agent:ta/interface:eth0")
		Expect(err).ToNot(HaveOccurred())
		child := oid.Child("phy", "")
		Expect(child.String()).To(Equal("/agent:ta/interface:eth0/phy:"))
		Expect(oid).To(HaveLen(2))
		Expect(child.Prefix(1).String()).To(Equal("/agent:ta"))
	})
})
