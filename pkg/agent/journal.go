package agent

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/utils"
)

// JournalEntry describes one group commit
type JournalEntry struct {
	Time    time.Time
	BatchID string
	Group   uint32
	// OIDs are the committed container instances in commit order
	OIDs []string
	Err  error
}

// Journal records group commits
type Journal interface {
	Record(entry JournalEntry) error
}

// NewJournalFileWriterImpl returns a new JournalFileWriterImpl instance
func NewJournalFileWriterImpl(path string, log klog.Logger) *JournalFileWriterImpl {
	return &JournalFileWriterImpl{
		log:  log,
		path: path,
	}
}

// JournalFileWriterImpl implements Journal interface and appends entries to
// a file in a human-readable format, it is intended for debug purposes.
type JournalFileWriterImpl struct {
	log  klog.Logger
	path string
}

// Record implements Journal interface
func (j JournalFileWriterImpl) Record(entry JournalEntry) error {
	exist, err := utils.PathExists(j.path)
	if err != nil {
		return errors.Wrapf(err, "failed to determine if path exist: %s", j.path)
	}
	if !exist {
		j.log.Info("creating commit journal", "path", j.path)
	}

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open commit journal: %s", j.path)
	}
	defer file.Close()

	_, err = file.WriteString(formatEntry(entry))
	return err
}

func formatEntry(entry JournalEntry) string {
	status := "ok"
	if entry.Err != nil {
		status = fmt.Sprintf("failed: %s", strings.ReplaceAll(entry.Err.Error(), "\n", " "))
	}
	sb := strings.Builder{}
	_, _ = sb.WriteString(fmt.Sprintf("%s batch=%s group=%d status=%q\n",
		entry.Time.UTC().Format(time.RFC3339), entry.BatchID, entry.Group, status))
	for _, oid := range entry.OIDs {
		_, _ = sb.WriteString("  ")
		_, _ = sb.WriteString(oid)
		_, _ = sb.WriteRune('\n')
	}
	return sb.String()
}
