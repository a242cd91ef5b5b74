package ethtool

import (
	"strconv"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/errcode"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
)

func (a *Agent) deviceInfoNode() *cfgtree.Node {
	leaf := func(name string, field func(info *netwrappers.DriverInfo) string) *cfgtree.Node {
		return cfgtree.NewNodeBuilder(name).WithGet(func(req *cfgtree.Request) (string, error) {
			info, err := a.dev.DriverInfo(req.IfName())
			if err != nil {
				return "", a.native(err, types.CmdGDrvInfo, req.IfName())
			}
			return field(&info), nil
		}).Build()
	}
	return cfgtree.NewNodeBuilder("deviceinfo").
		WithChildren(
			leaf("drivername", func(info *netwrappers.DriverInfo) string { return info.Driver }),
			leaf("driverversion", func(info *netwrappers.DriverInfo) string { return info.Version }),
			leaf("firmwareversion", func(info *netwrappers.DriverInfo) string { return info.FwVersion }),
			leaf("businfo", func(info *netwrappers.DriverInfo) string { return info.BusInfo }),
		).
		Build()
}

func (a *Agent) resetNode() *cfgtree.Node {
	return cfgtree.NewNodeBuilder("reset").
		WithGet(func(*cfgtree.Request) (string, error) { return "0", nil }).
		WithSet(a.resetSet).
		Build()
}

func (a *Agent) resetSet(req *cfgtree.Request, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return errcode.New(errcode.Invalid, "invalid reset value %q", value)
	}
	if v == 0 {
		return nil
	}
	ifName := req.IfName()
	left, err := a.eth.Reset(ifName, types.ResetAll)
	if err != nil {
		return a.native(err, types.CmdReset, ifName)
	}
	a.log.V(2).Info("device reset", "interface", ifName, "notReset", strconv.FormatUint(uint64(left), 16))
	return nil
}
