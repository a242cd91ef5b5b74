package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/agent"
	netwrappers "github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/net"
)

// runner executes a batch and prints its results
type runner struct {
	opts *agent.Options
	out  io.Writer
	// newAgent is replaced in tests
	newAgent func(opts *agent.Options) (*agent.Agent, error)
}

func newLocalAgent(opts *agent.Options) (*agent.Agent, error) {
	return agent.NewAgent(opts, netwrappers.NewEthtoolProviderImpl(), netwrappers.NewNetlinkProviderImpl(),
		netwrappers.NewDeviceInfoProviderImpl())
}

func (r *runner) run(ops []agent.Operation) error {
	a, err := r.newAgent(r.opts)
	if err != nil {
		return err
	}
	batchID := uuid.NewString()
	klog.V(2).InfoS("running batch", "batch", batchID, "operations", len(ops), "netns", r.opts.Netns)

	results, err := a.Apply(batchID, ops)
	for i := range results {
		r.print(&results[i])
	}
	return err
}

func (r *runner) print(res *agent.Result) {
	switch res.Op {
	case agent.OpGet:
		fmt.Fprintln(r.out, res.Value)
	case agent.OpList:
		for _, name := range res.Names {
			fmt.Fprintln(r.out, name)
		}
	case agent.OpWalk:
		for _, e := range res.Entries {
			fmt.Fprintf(r.out, "%s = %s\n", e.OID, e.Value)
		}
	}
}

func newRootCommand(opts *agent.Options, out io.Writer) *cobra.Command {
	r := &runner{opts: opts, out: out, newAgent: newLocalAgent}
	logFlushFreq := defaultLogFlushFrequency

	cmd := &cobra.Command{
		Use:   "ethtool-config-agent",
		Short: "Configure network interfaces through the configuration tree",
		Long: `ethtool-config-agent reads and changes ethtool settings and routes of the
local network interfaces. Objects are addressed by instance identifiers such as
/agent:local/interface:eth0/coalesce:/global:/param:rx_usecs`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			setupLogging(ctx, logFlushFreq)
		},
	}
	opts.AddFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().DurationVar(&logFlushFreq, "log-flush-frequency", logFlushFreq,
		"Maximum time between log flushes.")

	cmd.AddCommand(
		newGetCommand(r),
		newSetCommand(r),
		newAddCommand(r),
		newDelCommand(r),
		newListCommand(r),
		newDumpCommand(r),
		newApplyCommand(r),
	)
	return cmd
}

func newGetCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "get OID",
		Short: "Print the value of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run([]agent.Operation{{Op: agent.OpGet, OID: args[0]}})
		},
	}
}

func newSetCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "set OID VALUE [OID VALUE...]",
		Short: "Set values and commit them together",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return errors.New("expected OID VALUE pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := make([]agent.Operation, 0, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				ops = append(ops, agent.Operation{Op: agent.OpSet, OID: args[i], Value: args[i+1]})
			}
			return r.run(ops)
		},
	}
}

func newAddCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "add OID [VALUE]",
		Short: "Add an instance",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := agent.Operation{Op: agent.OpAdd, OID: args[0]}
			if len(args) == 2 {
				op.Value = args[1]
			}
			return r.run([]agent.Operation{op})
		},
	}
}

func newDelCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "del OID",
		Short: "Delete an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run([]agent.Operation{{Op: agent.OpDel, OID: args[0]}})
		},
	}
}

func newListCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list OID SUBID",
		Short: "List instance names of a child collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run([]agent.Operation{{Op: agent.OpList, OID: args[0], SubID: args[1]}})
		},
	}
}

func newDumpCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [OID]",
		Short: "Print an instance and all its descendants",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op := agent.Operation{Op: agent.OpWalk}
			if len(args) == 1 {
				op.OID = args[0]
			}
			return r.run([]agent.Operation{op})
		},
	}
}

func newApplyCommand(r *runner) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Run operations of a batch file in one group and commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return errors.Wrapf(err, "failed to open batch file %s", file)
				}
				defer f.Close()
				in = f
			}
			ops, err := agent.LoadBatch(in)
			if err != nil {
				return err
			}
			return r.run(ops)
		},
	}
	cmd.Flags().StringVarP(&file, "filename", "f", "", "Batch file, - for standard input.")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}
