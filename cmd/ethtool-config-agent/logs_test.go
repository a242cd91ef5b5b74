package main

import (
	"context"
	"log"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/agent"
)

var _ = Describe("Root command and logging tests", func() {
	It("registers sub-commands and flags", func() {
		// registers klog flags on the global flag set, so it runs once
		root := newRootCommand(agent.NewOptions(), GinkgoWriter)

		names := []string{}
		for _, c := range root.Commands() {
			names = append(names, c.Name())
		}
		Expect(names).To(ConsistOf("get", "set", "add", "del", "list", "dump", "apply"))

		f := root.PersistentFlags().Lookup("log-flush-frequency")
		Expect(f).ToNot(BeNil())
		Expect(f.DefValue).To(Equal("5s"))
		for _, name := range []string{"agent-name", "netns", "cache-slots", "commit-journal-path", "v"} {
			Expect(root.PersistentFlags().Lookup(name)).ToNot(BeNil(), name)
		}
	})

	It("routes the standard logger to klog", func() {
		DeferCleanup(func() {
			log.SetOutput(os.Stderr)
			log.SetFlags(log.LstdFlags)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		setupLogging(ctx, 0)
		Expect(log.Writer()).To(Equal(stdLogToKlog{}))
		Expect(log.Flags()).To(BeZero())

		n, err := stdLogToKlog{}.Write([]byte("hello\n"))
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(6))
	})
})
