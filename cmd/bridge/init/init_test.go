package initcmder_test

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	initcmder "github.com/papercomputeco/bridge/cmd/bridge/init"
	"github.com/papercomputeco/bridge/pkg/config"
)

var _ = Describe("NewInitCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Use).To(Equal("init"))
	})

	It("rejects any arguments", func() {
		cmd := initcmder.NewInitCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})

	It("has a --preset flag", func() {
		cmd := initcmder.NewInitCmd()
		f := cmd.Flags().Lookup("preset")
		Expect(f).NotTo(BeNil())
		Expect(f.DefValue).To(Equal(""))
	})
})

var _ = Describe("Init command execution", func() {
	var (
		tmpDir  string
		origDir string
	)

	execute := func(args ...string) error {
		cmd := initcmder.NewInitCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	readConfig := func() *config.Config {
		cfg := &config.Config{}
		_, err := toml.DecodeFile(filepath.Join(tmpDir, ".bridge", "config.toml"), cfg)
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "bridge-init-test-*")
		Expect(err).NotTo(HaveOccurred())

		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tmpDir)
	})

	It("creates a .bridge directory in the current directory", func() {
		Expect(execute()).To(Succeed())

		info, err := os.Stat(filepath.Join(tmpDir, ".bridge"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})

	It("creates a config.toml with default values", func() {
		Expect(execute()).To(Succeed())

		cfg := readConfig()
		Expect(cfg.Storage.Provider).To(Equal(config.StorageSQLite))
		Expect(cfg.Server.Listen).To(Equal(":3978"))
	})

	It("seeds the config from a preset", func() {
		Expect(execute("--preset", "emulator")).To(Succeed())

		cfg := readConfig()
		Expect(cfg.Storage.Provider).To(Equal(config.StorageMemory))
		Expect(cfg.Channel.RecordOnMessage).To(BeTrue())
	})

	It("rejects unknown presets", func() {
		Expect(execute("--preset", "azure")).To(MatchError(ContainSubstring("unknown preset")))
	})

	It("keeps an existing config unless forced", func() {
		Expect(execute("--preset", "emulator")).To(Succeed())
		Expect(execute("--preset", "cloud")).To(Succeed())
		Expect(readConfig().Storage.Provider).To(Equal(config.StorageMemory))

		Expect(execute("--preset", "cloud", "--force")).To(Succeed())
		Expect(readConfig().Storage.Provider).To(Equal(config.StoragePostgres))
	})
})
