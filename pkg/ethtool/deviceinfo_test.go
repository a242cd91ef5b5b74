package ethtool_test

import (
	"golang.org/x/sys/unix"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/testutil"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
)

var _ = Describe("Device information and reset tests", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv(&testutil.FakeInterface{})
		env.dev.On("DriverInfo", "eth0").Return(netwrappers.DriverInfo{
			Driver:    "ice",
			Version:   "1.11.14",
			FwVersion: "4.20 0x80017785 1.3346.0",
			BusInfo:   "0000:3b:00.0",
		}, nil)
		env.dev.On("DriverInfo", "eth1").Return(netwrappers.DriverInfo{}, unix.ENODEV)
	})

	It("reports driver information", func() {
		Expect(env.tree.Get(1, eth0+"/deviceinfo:/drivername:")).To(Equal("ice"))
		Expect(env.tree.Get(1, eth0+"/deviceinfo:/driverversion:")).To(Equal("1.11.14"))
		Expect(env.tree.Get(1, eth0+"/deviceinfo:/firmwareversion:")).To(Equal("4.20 0x80017785 1.3346.0"))
		Expect(env.tree.Get(1, eth0+"/deviceinfo:/businfo:")).To(Equal("0000:3b:00.0"))
	})

	It("returns driver errors", func() {
		_, err := env.tree.Get(1, "/agent:ta/interface:eth1/deviceinfo:/drivername:")
		Expect(errcode.Errno(err)).To(Equal(unix.ENODEV))
	})

	It("resets the device on non-zero writes", func() {
		Expect(env.tree.Get(1, eth0+"/reset:")).To(Equal("0"))
		Expect(env.tree.Set(1, eth0+"/reset:", "0")).To(Succeed())
		Expect(env.kernel.CallCount(types.CmdReset, "eth0")).To(BeZero())

		Expect(env.tree.Set(1, eth0+"/reset:", "1")).To(Succeed())
		Expect(env.iface.ResetFlags).To(Equal(types.ResetAll))
		Expect(errcode.KindOf(env.tree.Set(1, eth0+"/reset:", "on"))).To(Equal(errcode.Invalid))
	})
})
