package conv_test

import (
	"os"
	"path/filepath"

	"github.com/BKWSU-UK/proxmox-privconvert/conv"

	"code.cloudfoundry.org/lager/v3/lagertest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	errorspkg "github.com/pkg/errors"
)

var _ = Describe("Walker", func() {
	var (
		logger    *lagertest.TestLogger
		rootDir   string
		converter *fakeConverter
		progress  *fakeProgressEmitter
		walker    *conv.Walker
	)

	BeforeEach(func() {
		var err error
		rootDir, err = os.MkdirTemp("", "walker")
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(filepath.Join(rootDir, "file-1"), []byte{}, 0644)).To(Succeed())
		Expect(os.Mkdir(filepath.Join(rootDir, "sub"), 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(rootDir, "sub", "file-2"), []byte{}, 0644)).To(Succeed())

		logger = lagertest.NewTestLogger("walker")
		converter = &fakeConverter{}
		progress = &fakeProgressEmitter{}
	})

	JustBeforeEach(func() {
		walker = conv.NewWalker(converter, progress)
	})

	AfterEach(func() {
		Expect(os.RemoveAll(rootDir)).To(Succeed())
	})

	It("passes every entry through the converter exactly once", func() {
		summary, err := walker.Walk(logger, rootDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(converter.paths).To(ConsistOf(
			rootDir,
			filepath.Join(rootDir, "file-1"),
			filepath.Join(rootDir, "sub"),
			filepath.Join(rootDir, "sub", "file-2"),
		))
		Expect(summary.Processed).To(Equal(uint64(4)))
		Expect(summary.Errored).To(BeZero())
	})

	It("emits progress for each converted object", func() {
		_, err := walker.Walk(logger, rootDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(progress.counts).To(Equal([]uint64{1, 2, 3, 4}))
	})

	It("does not follow symlinks into other trees", func() {
		outsideDir, err := os.MkdirTemp("", "outside")
		Expect(err).NotTo(HaveOccurred())
		defer func() { Expect(os.RemoveAll(outsideDir)).To(Succeed()) }()
		Expect(os.WriteFile(filepath.Join(outsideDir, "secret"), []byte{}, 0644)).To(Succeed())

		linkPath := filepath.Join(rootDir, "outside-link")
		Expect(os.Symlink(outsideDir, linkPath)).To(Succeed())

		_, err = walker.Walk(logger, rootDir)
		Expect(err).NotTo(HaveOccurred())

		Expect(converter.paths).To(ContainElement(linkPath))
		Expect(converter.paths).NotTo(ContainElement(filepath.Join(outsideDir, "secret")))
		Expect(converter.paths).NotTo(ContainElement(filepath.Join(linkPath, "secret")))
	})

	It("counts hardlink skips separately from conversions", func() {
		Expect(os.Link(filepath.Join(rootDir, "file-1"), filepath.Join(rootDir, "file-1-link"))).To(Succeed())

		seen := map[uint64]bool{}
		converter.convertStub = func(object conv.Object) (conv.Outcome, error) {
			if seen[object.Stat.Ino] {
				return conv.OutcomeSkipped, nil
			}
			seen[object.Stat.Ino] = true
			return conv.OutcomeConverted, nil
		}

		summary, err := walker.Walk(logger, rootDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Processed).To(Equal(uint64(4)))
		Expect(summary.Skipped).To(Equal(uint64(1)))
	})

	Context("when the converter reports a recoverable error", func() {
		BeforeEach(func() {
			converter.convertStub = func(object conv.Object) (conv.Outcome, error) {
				if filepath.Base(object.Path) == "file-1" {
					return conv.OutcomeError, errorspkg.New("chown failed")
				}
				return conv.OutcomeConverted, nil
			}
		})

		It("counts the error and keeps walking", func() {
			summary, err := walker.Walk(logger, rootDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Errored).To(Equal(uint64(1)))
			Expect(summary.Processed).To(Equal(uint64(3)))
		})
	})

	Context("when the converter hits an identity bounds violation", func() {
		BeforeEach(func() {
			converter.convertStub = func(object conv.Object) (conv.Outcome, error) {
				return conv.OutcomeError, errorspkg.Wrap(conv.ErrIdentityOverflow, "shifting uid")
			}
		})

		It("aborts the walk and surfaces the violation", func() {
			_, err := walker.Walk(logger, rootDir)
			Expect(err).To(HaveOccurred())
			Expect(conv.IsBoundsViolation(err)).To(BeTrue())
			Expect(converter.paths).To(HaveLen(1))
		})
	})

	Context("when the root path does not exist", func() {
		It("returns an error", func() {
			_, err := walker.Walk(logger, filepath.Join(rootDir, "no-such-dir"))
			Expect(err).To(MatchError(ContainSubstring("target path")))
		})
	})

	Context("when the root path is not a directory", func() {
		It("returns an error", func() {
			_, err := walker.Walk(logger, filepath.Join(rootDir, "file-1"))
			Expect(err).To(MatchError(ContainSubstring("not a directory")))
		})
	})
})
