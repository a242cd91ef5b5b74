package main

import (
	"os"

	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/agent"
	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/utils"
)

func main() {
	ctx := utils.SetupSignalHandler()
	err := newRootCommand(agent.NewOptions(), os.Stdout).ExecuteContext(ctx)
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
