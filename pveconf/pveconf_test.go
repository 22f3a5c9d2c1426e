package pveconf_test

import (
	"os"
	"path/filepath"

	"github.com/BKWSU-UK/proxmox-privconvert/pveconf"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parse", func() {
	var (
		configDir  string
		configPath string
	)

	BeforeEach(func() {
		var err error
		configDir, err = os.MkdirTemp("", "pveconf")
		Expect(err).NotTo(HaveOccurred())
		configPath = filepath.Join(configDir, "111.conf")
	})

	AfterEach(func() {
		Expect(os.RemoveAll(configDir)).To(Succeed())
	})

	writeConfig := func(contents string) {
		ExpectWithOffset(1, os.WriteFile(configPath, []byte(contents), 0644)).To(Succeed())
	}

	It("reads the unprivileged flag and the mount entries", func() {
		writeConfig(`arch: amd64
hostname: ct111
rootfs: local-zfs:subvol-111-disk-0,size=8G
mp0: /mnt/data,mp=/data
unprivileged: 1
`)

		cfg, err := pveconf.Parse(configPath)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Unprivileged).NotTo(BeNil())
		Expect(*cfg.Unprivileged).To(BeTrue())
		Expect(cfg.StorageSpecs).To(Equal([]string{"local-zfs:subvol-111-disk-0", "/mnt/data"}))
	})

	It("reads a privileged flag", func() {
		writeConfig("unprivileged: 0\nrootfs: /var/lib/ct\n")

		cfg, err := pveconf.Parse(configPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(*cfg.Unprivileged).To(BeFalse())
	})

	It("leaves the flag nil when the primary section has none", func() {
		writeConfig("arch: amd64\nrootfs: /var/lib/ct\n")

		cfg, err := pveconf.Parse(configPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Unprivileged).To(BeNil())
	})

	It("stops reading at the first snapshot section", func() {
		writeConfig(`rootfs: /var/lib/ct
[snapshot-before-upgrade]
unprivileged: 1
mp0: /snapshots/data,mp=/data
`)

		cfg, err := pveconf.Parse(configPath)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Unprivileged).To(BeNil())
		Expect(cfg.StorageSpecs).To(Equal([]string{"/var/lib/ct"}))
	})

	It("ignores lines that merely start with mp", func() {
		writeConfig("mpwhat: something\nmp1: /mnt/other\n")

		cfg, err := pveconf.Parse(configPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.StorageSpecs).To(Equal([]string{"/mnt/other"}))
	})

	Context("when the flag value is not a number", func() {
		It("returns an error", func() {
			writeConfig("unprivileged: maybe\n")

			_, err := pveconf.Parse(configPath)
			Expect(err).To(MatchError(ContainSubstring("invalid unprivileged flag")))
		})
	})

	Context("when the config file does not exist", func() {
		It("returns an error", func() {
			_, err := pveconf.Parse(filepath.Join(configDir, "nope.conf"))
			Expect(err).To(MatchError(ContainSubstring("opening container config")))
		})
	})
})

var _ = Describe("ResolveStoragePath", func() {
	It("passes absolute paths through", func() {
		path, err := pveconf.ResolveStoragePath("/var/lib/ct")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/var/lib/ct"))
	})

	It("maps pool:subvol to /pool/subvol", func() {
		path, err := pveconf.ResolveStoragePath("rpool:subvol-111-disk-0")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/rpool/subvol-111-disk-0"))
	})

	It("rejects anything else", func() {
		_, err := pveconf.ResolveStoragePath("just-a-name")
		Expect(err).To(MatchError(ContainSubstring("unparseable storage specification")))

		_, err = pveconf.ResolveStoragePath("pool:")
		Expect(err).To(MatchError(ContainSubstring("unparseable storage specification")))
	})
})

var _ = Describe("TargetPaths", func() {
	It("resolves every spec and drops duplicates, keeping order", func() {
		cfg := pveconf.Config{
			StorageSpecs: []string{"rpool:subvol-111-disk-0", "/mnt/data", "/rpool/subvol-111-disk-0"},
		}

		paths, err := cfg.TargetPaths()
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(Equal([]string{"/rpool/subvol-111-disk-0", "/mnt/data"}))
	})

	It("fails on the first unresolvable spec", func() {
		cfg := pveconf.Config{StorageSpecs: []string{"bogus"}}

		_, err := cfg.TargetPaths()
		Expect(err).To(HaveOccurred())
	})
})
