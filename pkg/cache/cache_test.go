package cache_test

import (
	"errors"
	"strings"

	"k8s.io/klog/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
)

type fakePayload struct {
	val   uint32
	freed bool
}

var _ = Describe("Object cache tests", func() {
	var c *cache.Cache
	var log = klog.NewKlogr().WithName("cache-test")
	var materialized int

	materialize := func(o *cache.Object) error {
		materialized++
		o.Payload = &fakePayload{val: 10}
		o.SetFree(func(p interface{}) { p.(*fakePayload).freed = true })
		return nil
	}

	BeforeEach(func() {
		c = cache.New(4, log)
		materialized = 0
	})

	Context("New", func() {
		It("uses default capacity for non positive capacity", func() {
			Expect(cache.New(0, log).Capacity()).To(Equal(cache.DefaultCapacity))
		})
	})

	Context("Add", func() {
		It("adds object with create action", func() {
			o, err := c.Add("route", "10.0.0.0|8", "10.0.0.1", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(o.Action).To(Equal(cache.ActionCreate))
			Expect(o.Value).To(Equal("10.0.0.1"))
			Expect(c.Find("route", "10.0.0.0|8", 1)).To(BeIdenticalTo(o))
			Expect(c.Len()).To(Equal(1))
		})

		It("fails with already-exists on duplicate key", func() {
			_, err := c.Add("route", "r", "", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			_, err = c.Add("route", "r", "", 1, nil, nil)
			Expect(errcode.KindOf(err)).To(Equal(errcode.AlreadyExists))
		})

		It("fails with no-memory when table is full", func() {
			for _, n := range []string{"a", "b", "c", "d"} {
				_, err := c.Add("t", n, "", 1, nil, nil)
				Expect(err).ToNot(HaveOccurred())
			}
			_, err := c.Add("t", "e", "", 1, nil, nil)
			Expect(errcode.KindOf(err)).To(Equal(errcode.NoMemory))
		})
	})

	Context("FindOrCreate", func() {
		It("materializes once per group", func() {
			o, created, err := c.FindOrCreate("if_coalesce", "eth0", 1, materialize)
			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(o.Action).To(Equal(cache.ActionGet))

			o2, created, err := c.FindOrCreate("if_coalesce", "eth0", 1, materialize)
			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(o2).To(BeIdenticalTo(o))
			Expect(materialized).To(Equal(1))
		})

		It("evicts objects of another group", func() {
			o, _, err := c.FindOrCreate("if_coalesce", "eth0", 1, materialize)
			Expect(err).ToNot(HaveOccurred())
			p := o.Payload.(*fakePayload)

			_, _, err = c.FindOrCreate("if_coalesce", "eth0", 2, materialize)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Find("if_coalesce", "eth0", 1)).To(BeNil())
			Expect(p.freed).To(BeTrue())
			Expect(c.Len()).To(Equal(1))
		})

		It("frees the slot when materialize fails", func() {
			_, _, err := c.FindOrCreate("if_coalesce", "eth0", 1, func(o *cache.Object) error {
				return errcode.New(errcode.NotSupported, "GCOALESCE")
			})
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotSupported))
			Expect(c.Len()).To(Equal(0))
			Expect(c.Find("if_coalesce", "eth0", 1)).To(BeNil())
		})
	})

	Context("ValueSet and Set", func() {
		It("creates object with set action", func() {
			Expect(c.ValueSet("route", "r", "gw", 1, nil)).To(Succeed())
			o := c.Find("route", "r", 1)
			Expect(o).ToNot(BeNil())
			Expect(o.Action).To(Equal(cache.ActionSet))
			Expect(o.Value).To(Equal("gw"))
		})

		It("promotes get action to set", func() {
			_, _, err := c.FindOrCreate("route", "r", 1, materialize)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Set("route", "r", "mtu", "1500", 1, materialize)).To(Succeed())
			o := c.Find("route", "r", 1)
			Expect(o.Action).To(Equal(cache.ActionSet))
			v, ok := o.Attr("mtu")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("1500"))
			Expect(materialized).To(Equal(1))
		})

		It("keeps create action", func() {
			_, err := c.Add("route", "r", "", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Set("route", "r", "dev", "eth0", 1, nil)).To(Succeed())
			Expect(c.Find("route", "r", 1).Action).To(Equal(cache.ActionCreate))
		})

		It("refuses to modify object marked for deletion", func() {
			Expect(c.DeleteMark("route", "r", nil, nil, 1, nil)).To(Succeed())
			err := c.Set("route", "r", "mtu", "1500", 1, nil)
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
			err = c.ValueSet("route", "r", "gw", 1, nil)
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})
	})

	Context("AttrSet", func() {
		It("upserts attributes preserving order", func() {
			o, err := c.Add("route", "r", "", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.AttrSet(o, "dev", "eth0")).To(Succeed())
			Expect(c.AttrSet(o, "mtu", "1500")).To(Succeed())
			Expect(c.AttrSet(o, "dev", "eth1")).To(Succeed())
			Expect(o.Attrs()).To(Equal([]cache.Attr{{Name: "dev", Value: "eth1"}, {Name: "mtu", Value: "1500"}}))
		})

		It("fails with name-too-long", func() {
			o, err := c.Add("route", "r", "", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			err = c.AttrSet(o, strings.Repeat("n", cache.AttrNameMax), "v")
			Expect(errcode.KindOf(err)).To(Equal(errcode.NameTooLong))
			err = c.AttrSet(o, "n", strings.Repeat("v", cache.AttrValueMax))
			Expect(errcode.KindOf(err)).To(Equal(errcode.NameTooLong))
		})
	})

	Context("DeleteMark", func() {
		It("fails with locally-added for created object", func() {
			_, err := c.Add("route", "r", "", 1, nil, nil)
			Expect(err).ToNot(HaveOccurred())
			err = c.DeleteMark("route", "r", nil, nil, 1, nil)
			Expect(errcode.KindOf(err)).To(Equal(errcode.LocallyAdded))
		})

		It("marks existing object", func() {
			Expect(c.ValueSet("route", "r", "gw", 1, nil)).To(Succeed())
			Expect(c.DeleteMark("route", "r", nil, nil, 1, nil)).To(Succeed())
			Expect(c.Find("route", "r", 1).Action).To(Equal(cache.ActionDelete))
		})

		It("creates and materializes absent object", func() {
			Expect(c.DeleteMark("route", "r", nil, nil, 1, materialize)).To(Succeed())
			o := c.Find("route", "r", 1)
			Expect(o.Action).To(Equal(cache.ActionDelete))
			Expect(o.Payload).To(Equal(&fakePayload{val: 10}))
		})

		It("returns materialize error and frees the slot", func() {
			err := c.DeleteMark("route", "r", nil, nil, 1, func(o *cache.Object) error {
				return errors.New("boom")
			})
			Expect(err).To(HaveOccurred())
			Expect(c.Len()).To(Equal(0))
		})
	})

	Context("Free and Cleanup", func() {
		It("calls payload free function once", func() {
			o, _, err := c.FindOrCreate("if_pause", "eth0", 1, materialize)
			Expect(err).ToNot(HaveOccurred())
			p := o.Payload.(*fakePayload)
			c.Free(o)
			Expect(p.freed).To(BeTrue())
			p.freed = false
			c.Free(o)
			Expect(p.freed).To(BeFalse())
			Expect(c.Len()).To(Equal(0))
		})

		It("frees all objects", func() {
			for _, n := range []string{"a", "b"} {
				_, err := c.Add("t", n, "", 1, nil, nil)
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(c.Objects("t", 1)).To(HaveLen(2))
			c.Cleanup()
			Expect(c.Len()).To(Equal(0))
			Expect(c.Objects("t", 1)).To(BeEmpty())
		})
	})
})
