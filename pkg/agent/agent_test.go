package agent_test

import (
	"os"
	"path/filepath"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/agent"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/testutil"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net/mocks"
)

const eth0 = "/agent:local/interface:eth0"

// busyKernel fails pause parameter changes
type busyKernel struct {
	*testutil.FakeKernel
}

func (k *busyKernel) SetPauseParam(ifName string, p *types.PauseParam) error {
	return unix.EBUSY
}

var _ = Describe("Agent tests", func() {
	var kernel *testutil.FakeKernel
	var iface *testutil.FakeInterface
	var nl *mocks.NetlinkProvider
	var dev *mocks.DeviceInfoProvider
	var opts *agent.Options
	var a *agent.Agent

	BeforeEach(func() {
		kernel = testutil.NewFakeKernel()
		iface = &testutil.FakeInterface{
			Pause: &types.PauseParam{Autoneg: 1, RxPause: 1},
		}
		kernel.Interfaces["eth0"] = iface
		nl = mocks.NewNetlinkProvider(GinkgoT())
		dev = mocks.NewDeviceInfoProvider(GinkgoT())

		eth0Link := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "eth0", Index: 2}}
		loLink := &netlink.Device{LinkAttrs: netlink.LinkAttrs{Name: "lo", Index: 1}}
		nl.On("LinkByName", "eth0").Return(eth0Link, nil).Maybe()
		nl.On("LinkByName", "eth9").Return(nil, netlink.LinkNotFoundError{}).Maybe()
		nl.On("LinkList").Return([]netlink.Link{loLink, eth0Link}, nil).Maybe()

		opts = agent.NewOptions()
		dir, err := os.MkdirTemp("", "agent-test")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
		opts.CommitJournalPath = filepath.Join(dir, "journal")
		a, err = agent.NewAgent(opts, kernel, nl, dev)
		Expect(err).ToNot(HaveOccurred())
	})

	Context("NewOptions()", func() {
		It("has defaults", func() {
			o := agent.NewOptions()
			Expect(o.AgentName).To(Equal(agent.DefaultAgentName))
			Expect(o.CacheSlots).To(Equal(cache.DefaultCapacity))
			Expect(o.Netns).To(BeEmpty())
		})
	})

	Context("interfaces", func() {
		It("lists interfaces by name", func() {
			res, err := a.Apply("b1", []agent.Operation{{Op: agent.OpList, OID: a.OID(), SubID: "interface"}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res[0].Names).To(Equal([]string{"eth0", "lo"}))
		})

		It("returns the interface index", func() {
			res, err := a.Apply("b1", []agent.Operation{{Op: agent.OpGet, OID: eth0}})
			Expect(err).ToNot(HaveOccurred())
			Expect(res[0].Value).To(Equal("2"))
		})

		It("fails for missing interfaces", func() {
			_, err := a.Apply("b1", []agent.Operation{{Op: agent.OpGet, OID: "/agent:local/interface:eth9"}})
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})

		It("fails for other agents", func() {
			_, err := a.Apply("b1", []agent.Operation{{Op: agent.OpGet, OID: "/agent:remote/interface:eth0"}})
			Expect(errcode.KindOf(err)).To(Equal(errcode.NotFound))
		})
	})

	Context("Apply()", func() {
		It("commits a batch and records it in the journal", func() {
			res, err := a.Apply("batch-1", []agent.Operation{
				{Op: agent.OpGet, OID: eth0 + "/pause:/rx"},
				{Op: agent.OpSet, OID: eth0 + "/pause:/rx", Value: "0"},
				{Op: agent.OpSet, OID: eth0 + "/pause:/tx", Value: "1"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res).To(HaveLen(3))
			Expect(res[0].Value).To(Equal("1"))

			Expect(iface.Pause.RxPause).To(BeZero())
			Expect(iface.Pause.TxPause).To(BeEquivalentTo(1))
			Expect(kernel.CallCount(types.CmdSPauseParam, "eth0")).To(Equal(1))

			data, err := os.ReadFile(opts.CommitJournalPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("batch=batch-1"))
			Expect(string(data)).To(ContainSubstring(`status="ok"`))
			Expect(string(data)).To(ContainSubstring("  " + eth0 + "/pause:\n"))
		})

		It("does not journal batches without changes", func() {
			_, err := a.Apply("b1", []agent.Operation{{Op: agent.OpGet, OID: eth0 + "/pause:/autoneg"}})
			Expect(err).ToNot(HaveOccurred())
			_, err = os.Stat(opts.CommitJournalPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("commits nothing when an operation fails", func() {
			_, err := a.Apply("b1", []agent.Operation{
				{Op: agent.OpSet, OID: eth0 + "/pause:/rx", Value: "0"},
				{Op: agent.OpSet, OID: eth0 + "/pause:/tx", Value: "2"},
			})
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
			Expect(err.Error()).To(ContainSubstring("operation 1"))
			Expect(iface.Pause.RxPause).To(BeEquivalentTo(1))
			Expect(kernel.CallCount(types.CmdSPauseParam, "eth0")).To(BeZero())
		})

		It("journals failed commits", func() {
			a, err := agent.NewAgent(opts, &busyKernel{kernel}, nl, dev)
			Expect(err).ToNot(HaveOccurred())
			_, err = a.Apply("b2", []agent.Operation{{Op: agent.OpSet, OID: eth0 + "/pause:/rx", Value: "0"}})
			Expect(errcode.Errno(err)).To(Equal(unix.EBUSY))

			data, err := os.ReadFile(opts.CommitJournalPath)
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("batch=b2"))
			Expect(string(data)).To(ContainSubstring(`status="failed:`))
		})

		It("commits an instance explicitly", func() {
			_, err := a.Apply("b1", []agent.Operation{
				{Op: agent.OpSet, OID: eth0 + "/pause:/autoneg", Value: "0"},
				{Op: agent.OpCommit, OID: eth0 + "/pause:"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(iface.Pause.Autoneg).To(BeZero())
			_, err = os.Stat(opts.CommitJournalPath)
			Expect(os.IsNotExist(err)).To(BeTrue())
		})

		It("walks the agent tree", func() {
			res, err := a.Apply("b1", []agent.Operation{{Op: agent.OpWalk, OID: eth0 + "/pause:"}})
			Expect(err).ToNot(HaveOccurred())
			oids := []string{}
			for _, e := range res[0].Entries {
				oids = append(oids, e.OID)
			}
			Expect(oids).To(ContainElements(eth0+"/pause:", eth0+"/pause:/rx:"))
		})

		It("rejects unknown operations", func() {
			_, err := a.Apply("b1", []agent.Operation{{Op: "move", OID: eth0}})
			Expect(errcode.KindOf(err)).To(Equal(errcode.Invalid))
		})

		It("fails for a missing network namespace", func() {
			opts.Netns = "no-such-ns-for-test"
			_, err := a.Apply("b1", []agent.Operation{{Op: agent.OpGet, OID: eth0}})
			Expect(err).To(HaveOccurred())
		})
	})
})
