package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/uistream/pkg/dotdir"
)

// chdir moves into dir for the duration of the current spec.
func chdir(dir string) {
	origDir, err := os.Getwd()
	Expect(err).NotTo(HaveOccurred())
	Expect(os.Chdir(dir)).To(Succeed())
	DeferCleanup(func() { _ = os.Chdir(origDir) })
}

var _ = Describe("Manager", func() {
	var (
		m       *dotdir.Manager
		workDir string
		homeDir string
	)

	BeforeEach(func() {
		// EvalSymlinks so that paths compare equal on macOS, where the
		// temp dir lives behind /var -> /private/var.
		root, err := filepath.EvalSymlinks(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		workDir = filepath.Join(root, "work")
		homeDir = filepath.Join(root, "home")
		Expect(os.Mkdir(workDir, 0o755)).To(Succeed())
		Expect(os.Mkdir(homeDir, 0o755)).To(Succeed())

		chdir(workDir)
		GinkgoT().Setenv("HOME", homeDir)
		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		DescribeTable("picks the directory by precedence",
			func(local, home bool, expected func() string) {
				if local {
					Expect(os.Mkdir(filepath.Join(workDir, ".uistream"), 0o755)).To(Succeed())
				}
				if home {
					Expect(os.Mkdir(filepath.Join(homeDir, ".uistream"), 0o755)).To(Succeed())
				}

				result, err := m.Target("")
				Expect(err).NotTo(HaveOccurred())
				Expect(result).To(Equal(expected()))
			},
			Entry("local wins over home", true, true, func() string { return filepath.Join(workDir, ".uistream") }),
			Entry("local only", true, false, func() string { return filepath.Join(workDir, ".uistream") }),
			Entry("home only", false, true, func() string { return filepath.Join(homeDir, ".uistream") }),
			Entry("neither", false, false, func() string { return "" }),
		)

		It("creates a missing override and prefers it over a local directory", func() {
			Expect(os.Mkdir(filepath.Join(workDir, ".uistream"), 0o755)).To(Succeed())
			override := filepath.Join(workDir, "custom", "dir")

			result, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(override))
			Expect(override).To(BeADirectory())
		})

		It("makes a relative override absolute", func() {
			result, err := m.Target("rel")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(workDir, "rel")))
		})

		It("ignores a regular file named .uistream", func() {
			Expect(os.WriteFile(filepath.Join(workDir, ".uistream"), nil, 0o600)).To(Succeed())

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("Resolve", func() {
		It("falls back to creating the home directory", func() {
			result, err := m.Resolve("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(homeDir, ".uistream")))
			Expect(result).To(BeADirectory())
		})

		It("keeps an existing local directory", func() {
			local := filepath.Join(workDir, ".uistream")
			Expect(os.Mkdir(local, 0o755)).To(Succeed())

			result, err := m.Resolve("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(local))
			Expect(filepath.Join(homeDir, ".uistream")).NotTo(BeADirectory())
		})
	})
})
