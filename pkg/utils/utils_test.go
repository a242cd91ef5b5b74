package utils_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/k8snetworkplumbingwg/ethtool-config-agent/pkg/utils"
)

var _ = Describe("utils test", func() {
	Context("PathExists()", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "utils-test")
			Expect(err).ToNot(HaveOccurred())
			DeferCleanup(os.RemoveAll, dir)
		})

		It("returns true for existing paths", func() {
			f := filepath.Join(dir, "file")
			Expect(os.WriteFile(f, []byte("x"), 0o600)).To(Succeed())
			Expect(utils.PathExists(f)).To(BeTrue())
			Expect(utils.PathExists(dir)).To(BeTrue())
		})

		It("returns false for missing paths", func() {
			Expect(utils.PathExists(filepath.Join(dir, "missing"))).To(BeFalse())
		})
	})

	Context("SetupSignalHandler()", func() {
		It("returns a live context and panics on a second call", func() {
			ctx := utils.SetupSignalHandler()
			Expect(ctx.Err()).ToNot(HaveOccurred())
			Expect(func() { utils.SetupSignalHandler() }).To(Panic())
		})
	})
})
