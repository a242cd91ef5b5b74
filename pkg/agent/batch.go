package agent

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/cfgtree"
)

// OpType is a tree operation
type OpType string

const (
	OpGet    OpType = "get"
	OpSet    OpType = "set"
	OpAdd    OpType = "add"
	OpDel    OpType = "del"
	OpList   OpType = "list"
	OpWalk   OpType = "walk"
	OpCommit OpType = "commit"
)

// Operation is one tree operation of a batch
type Operation struct {
	Op    OpType `yaml:"op"`
	OID   string `yaml:"oid"`
	Value string `yaml:"value,omitempty"`
	// SubID is the child collection listed by OpList
	SubID string `yaml:"subid,omitempty"`
}

// Result is the outcome of a successful operation
type Result struct {
	Operation
	Value   string
	Names   []string
	Entries []cfgtree.Entry
}

// Batch is the content of a batch file
type Batch struct {
	Operations []Operation `yaml:"operations"`
}

// LoadBatch parses a YAML batch file
func LoadBatch(r io.Reader) ([]Operation, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	batch := Batch{}
	if err := dec.Decode(&batch); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("batch file is empty")
		}
		return nil, errors.Wrap(err, "failed to parse batch file")
	}
	for i, op := range batch.Operations {
		if op.Op == "" || (op.OID == "" && op.Op != OpWalk) {
			return nil, errors.Errorf("operation %d: op and oid are required", i)
		}
		if op.Op == OpList && op.SubID == "" {
			return nil, errors.Errorf("operation %d: list requires subid", i)
		}
	}
	return batch.Operations, nil
}
