package types

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// FeatureBlock is one 32-feature block of a GFEATURES reply
type FeatureBlock struct {
	Available    uint32
	Requested    uint32
	Active       uint32
	NeverChanged uint32
}

// SetFeatureBlock is one 32-feature block of a SFEATURES request
type SetFeatureBlock struct {
	Valid     uint32
	Requested uint32
}

// FeatureBlocks returns the number of blocks needed for count features
func FeatureBlocks(count uint32) uint32 {
	return (count + 31) / 32
}

// FeatureBit returns block index and bit mask of feature idx
func FeatureBit(idx uint32) (uint32, uint32) {
	return idx / 32, 1 << (idx % 32)
}

// EncodeGetFeatures builds a GFEATURES request for size blocks
func EncodeGetFeatures(size uint32) []byte {
	buf := make([]byte, 8+16*size)
	binary.NativeEndian.PutUint32(buf[0:], uint32(CmdGFeatures))
	binary.NativeEndian.PutUint32(buf[4:], size)
	return buf
}

// DecodeGetFeatures decodes a GFEATURES reply
func DecodeGetFeatures(data []byte) ([]FeatureBlock, error) {
	if len(data) < 8 {
		return nil, errors.New("short GFEATURES reply")
	}
	size := binary.NativeEndian.Uint32(data[4:])
	blocks := make([]FeatureBlock, size)
	if err := binary.Read(bytes.NewReader(data[8:]), binary.NativeEndian, blocks); err != nil {
		return nil, errors.Wrap(err, "failed to decode GFEATURES reply")
	}
	return blocks, nil
}

// EncodeSetFeatures builds a SFEATURES request
func EncodeSetFeatures(blocks []SetFeatureBlock) []byte {
	buf := make([]byte, 8, 8+8*len(blocks))
	binary.NativeEndian.PutUint32(buf[0:], uint32(CmdSFeatures))
	binary.NativeEndian.PutUint32(buf[4:], uint32(len(blocks)))
	for _, b := range blocks {
		buf = binary.NativeEndian.AppendUint32(buf, b.Valid)
		buf = binary.NativeEndian.AppendUint32(buf, b.Requested)
	}
	return buf
}

// EncodeGetStrings builds a GSTRINGS request for count strings of set
func EncodeGetStrings(set StringSet, count uint32) []byte {
	buf := make([]byte, 12+StringLen*count)
	binary.NativeEndian.PutUint32(buf[0:], uint32(CmdGStrings))
	binary.NativeEndian.PutUint32(buf[4:], uint32(set))
	binary.NativeEndian.PutUint32(buf[8:], count)
	return buf
}

// DecodeGetStrings decodes a GSTRINGS reply
func DecodeGetStrings(data []byte) ([]string, error) {
	if len(data) < 12 {
		return nil, errors.New("short GSTRINGS reply")
	}
	count := binary.NativeEndian.Uint32(data[8:])
	if uint32(len(data)-12) < count*StringLen {
		return nil, errors.Errorf("GSTRINGS reply too short for %d strings", count)
	}
	strs := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		raw := data[12+i*StringLen : 12+(i+1)*StringLen]
		if n := bytes.IndexByte(raw, 0); n >= 0 {
			raw = raw[:n]
		}
		strs = append(strs, string(raw))
	}
	return strs, nil
}
