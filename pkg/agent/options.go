package agent

import (
	"flag"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cache"
)

// DefaultAgentName is the agent instance name used when none is given
const DefaultAgentName = "local"

// Options stores option for the command
type Options struct {
	// AgentName is the instance name of the tree root (/agent:<name>)
	AgentName string
	// Netns is a network namespace name or path requests are executed in
	Netns string
	// CacheSlots is the number of object cache slots
	CacheSlots int
	// CommitJournalPath is a file commits are recorded to, journal is disabled if empty
	CommitJournalPath string
}

// AddFlags adds command line flags into command
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	klog.InitFlags(nil)
	fs.SortFlags = false
	fs.StringVar(&o.AgentName, "agent-name", o.AgentName, "Instance name of the agent in object identifiers.")
	fs.StringVar(&o.Netns, "netns", o.Netns, "Network namespace name or path to run requests in. Current namespace if empty.")
	fs.IntVar(&o.CacheSlots, "cache-slots", o.CacheSlots, "Number of object cache slots.")
	fs.StringVar(&o.CommitJournalPath, "commit-journal-path", o.CommitJournalPath, "If non-empty, committed instances are appended to this file for troubleshooting.")
	fs.AddGoFlagSet(flag.CommandLine)
}

// NewOptions initializes Options
func NewOptions() *Options {
	return &Options{
		AgentName:  DefaultAgentName,
		CacheSlots: cache.DefaultCapacity,
	}
}
