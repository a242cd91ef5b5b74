package types_test

import (
	"encoding/binary"

	"github.com/google/go-cmp/cmp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/ethtool/types"
)

var _ = Describe("ethtool types tests", func() {
	Context("native layout", func() {
		It("has kernel sizes", func() {
			Expect(binary.Size(types.Coalesce{})).To(Equal(92))
			Expect(binary.Size(types.PauseParam{})).To(Equal(16))
			Expect(binary.Size(types.EEE{})).To(Equal(40))
			Expect(binary.Size(types.RingParam{})).To(Equal(36))
			Expect(binary.Size(types.Channels{})).To(Equal(36))
			Expect(binary.Size(types.LegacySettings{})).To(Equal(44))
			Expect(binary.Size(types.LinkSettings{})).To(Equal(48 + 4*3*types.LinkModeMasksMaxWords))
			Expect(binary.Size(types.RxFlowSpec{})).To(Equal(168))
		})

		It("encodes rxnfc with rule locations after the flow spec", func() {
			r := types.RxNFC{Cmd: types.CmdGRxClsRlAll, RuleCnt: 2, RuleLocs: []uint32{3, 7}}
			data, err := r.Encode(2)
			Expect(err).ToNot(HaveOccurred())
			Expect(data).To(HaveLen(188 + 8))
			Expect(binary.NativeEndian.Uint32(data[184:])).To(Equal(uint32(2)))
			Expect(binary.NativeEndian.Uint32(data[192:])).To(Equal(uint32(7)))

			decoded, err := types.DecodeRxNFC(data, 2)
			Expect(err).ToNot(HaveOccurred())
			Expect(decoded).To(Equal(&r))
		})

		It("places ring cookie and location", func() {
			r := types.RxNFC{Cmd: types.CmdSRxClsRlIns}
			r.FS.RingCookie = types.RxClsFlowDisc
			r.FS.Location = types.RxClsLocAny
			data, err := r.Encode(0)
			Expect(err).ToNot(HaveOccurred())
			Expect(binary.NativeEndian.Uint64(data[16+152:])).To(Equal(types.RxClsFlowDisc))
			Expect(binary.NativeEndian.Uint32(data[16+160:])).To(Equal(types.RxClsLocAny))
		})
	})

	Context("rxfh", func() {
		It("round trips indirection table and key", func() {
			r := types.Rxfh{Cmd: types.CmdSRssh, IndirSize: 4, KeySize: 3, Indir: []uint32{0, 1, 0, 1}, Key: []byte{1, 2, 3}}
			data, err := r.Encode()
			Expect(err).ToNot(HaveOccurred())
			Expect(data).To(HaveLen(types.RxfhHeaderLen + 16 + 3))
			decoded, err := types.DecodeRxfh(data)
			Expect(err).ToNot(HaveOccurred())
			Expect(cmp.Diff(&r, decoded)).To(BeEmpty())
		})

		It("omits indirection table when unchanged", func() {
			r := types.Rxfh{Cmd: types.CmdSRssh, IndirSize: types.RxfhIndirNoChange, KeySize: 2,
				Indir: []uint32{0, 1}, Key: []byte{0xaa, 0xbb}}
			data, err := r.Encode()
			Expect(err).ToNot(HaveOccurred())
			Expect(data).To(HaveLen(types.RxfhHeaderLen + 2))
			Expect(data[types.RxfhHeaderLen:]).To(Equal([]byte{0xaa, 0xbb}))
		})
	})

	Context("strings and features", func() {
		It("decodes string table", func() {
			data := types.EncodeGetStrings(types.StringSetFeatures, 2)
			copy(data[12:], "rx-checksum")
			copy(data[12+types.StringLen:], "rx-fcs")
			strs, err := types.DecodeGetStrings(data)
			Expect(err).ToNot(HaveOccurred())
			Expect(strs).To(Equal([]string{"rx-checksum", "rx-fcs"}))
		})

		It("computes feature blocks", func() {
			Expect(types.FeatureBlocks(0)).To(Equal(uint32(0)))
			Expect(types.FeatureBlocks(32)).To(Equal(uint32(1)))
			Expect(types.FeatureBlocks(33)).To(Equal(uint32(2)))
			blk, bit := types.FeatureBit(33)
			Expect(blk).To(Equal(uint32(1)))
			Expect(bit).To(Equal(uint32(2)))
		})

		It("encodes set features request", func() {
			data := types.EncodeSetFeatures([]types.SetFeatureBlock{{Valid: 1, Requested: 1}})
			Expect(data).To(HaveLen(16))
			Expect(binary.NativeEndian.Uint32(data[0:])).To(Equal(uint32(types.CmdSFeatures)))
			Expect(binary.NativeEndian.Uint32(data[4:])).To(Equal(uint32(1)))
		})

		It("decodes features reply", func() {
			data := types.EncodeGetFeatures(1)
			binary.NativeEndian.PutUint32(data[8:], 3)
			binary.NativeEndian.PutUint32(data[16:], 2)
			blocks, err := types.DecodeGetFeatures(data)
			Expect(err).ToNot(HaveOccurred())
			Expect(blocks).To(Equal([]types.FeatureBlock{{Available: 3, Active: 2}}))
		})
	})

	It("combines legacy speed halves", func() {
		s := types.LegacySettings{}
		s.SetSpeed(100000)
		Expect(s.Speed).To(Equal(uint16(100000 & 0xffff)))
		Expect(s.SpeedHi).To(Equal(uint16(1)))
		Expect(s.GetSpeed()).To(Equal(uint32(100000)))
	})
})
