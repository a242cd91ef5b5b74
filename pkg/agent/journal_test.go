package agent_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"k8s.io/klog/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/agent"
)

var _ = Describe("Journal tests", func() {
	var path string
	var j *agent.JournalFileWriterImpl
	ts := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "journal-test")
		Expect(err).ToNot(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
		path = filepath.Join(dir, "journal")
		j = agent.NewJournalFileWriterImpl(path, klog.NewKlogr().WithName("journal-test"))
	})

	It("appends entries", func() {
		Expect(j.Record(agent.JournalEntry{
			Time: ts, BatchID: "b1", Group: 1,
			OIDs: []string{"/agent:local/interface:eth0/ring:", "/agent:local/interface:eth0/pause:"},
		})).To(Succeed())
		Expect(j.Record(agent.JournalEntry{
			Time: ts, BatchID: "b2", Group: 2,
			OIDs: []string{"/agent:local/route:10.0.0.0|8"},
			Err:  fmt.Errorf("no such device"),
		})).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(Equal(
			"2023-06-01T10:00:00Z batch=b1 group=1 status=\"ok\"\n" +
				"  /agent:local/interface:eth0/ring:\n" +
				"  /agent:local/interface:eth0/pause:\n" +
				"2023-06-01T10:00:00Z batch=b2 group=2 status=\"failed: no such device\"\n" +
				"  /agent:local/route:10.0.0.0|8\n"))
	})

	It("fails when the directory does not exist", func() {
		j = agent.NewJournalFileWriterImpl(filepath.Join(path, "sub", "journal"), klog.NewKlogr())
		Expect(j.Record(agent.JournalEntry{Time: ts})).ToNot(Succeed())
	})
})
