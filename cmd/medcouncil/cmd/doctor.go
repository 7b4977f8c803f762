package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"

	"medcouncil/internal/adapters/ai"
	"medcouncil/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials, and the dataset",
	Long:  "Verify that the configuration validates, API keys are present for every configured provider, and the dataset is reachable.",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfg, cfgErr := loadConfig()

	fmt.Println("Checking configuration...")
	fmt.Println()
	if cfgErr != nil {
		fmt.Printf("  ✗ %v\n\n", cfgErr)
		return fmt.Errorf("configuration check failed")
	}
	fmt.Println("  ✓ configuration valid")
	fmt.Println()

	ok := true
	ok = checkAPIKeys(cfg) && ok
	ok = checkDataset(cfg) && ok
	checkSystem()

	if !ok {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("All checks passed")
	return nil
}

func checkAPIKeys(cfg *config.Config) bool {
	fmt.Println("Checking API keys...")
	fmt.Println()

	// One check per distinct provider; an explicit api_key in config
	// satisfies it without the environment variable.
	providers := map[string]bool{}
	for _, mc := range cfg.Models.Advisors {
		providers[mc.Provider] = providers[mc.Provider] || mc.APIKey != ""
	}
	mc := cfg.Models.Decision
	providers[mc.Provider] = providers[mc.Provider] || mc.APIKey != ""

	names := make([]string, 0, len(providers))
	for p := range providers {
		names = append(names, p)
	}
	sort.Strings(names)

	ok := true
	for _, provider := range names {
		envKey := ai.EnvKeyFor(provider)
		if providers[provider] || os.Getenv(envKey) != "" {
			fmt.Printf("  ✓ %s\n", provider)
			continue
		}
		fmt.Printf("  ✗ %s (%s is not set)\n", provider, envKey)
		ok = false
	}
	fmt.Println()
	return ok
}

func checkDataset(cfg *config.Config) bool {
	fmt.Println("Checking dataset...")
	fmt.Println()

	ok := true
	if info, err := os.Stat(cfg.Dataset.Path); err != nil {
		fmt.Printf("  ✗ questions: %v\n", err)
		ok = false
	} else {
		fmt.Printf("  ✓ questions: %s (%d bytes)\n", cfg.Dataset.Path, info.Size())
	}
	if info, err := os.Stat(cfg.Dataset.ImageBaseDir); err != nil || !info.IsDir() {
		fmt.Printf("  ✗ image directory: %s\n", cfg.Dataset.ImageBaseDir)
		ok = false
	} else {
		fmt.Printf("  ✓ image directory: %s\n", cfg.Dataset.ImageBaseDir)
	}
	if err := checkWritable(cfg.Run.LogDir); err != nil {
		fmt.Printf("  ✗ log directory %s: %v\n", cfg.Run.LogDir, err)
		ok = false
	} else {
		fmt.Printf("  ✓ log directory: %s\n", cfg.Run.LogDir)
	}
	fmt.Println()
	return ok
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func checkSystem() {
	fmt.Println("System resources...")
	fmt.Println()

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("  memory: %.1f GiB free of %.1f GiB\n",
			float64(vm.Available)/(1<<30), float64(vm.Total)/(1<<30))
	}
	if du, err := disk.Usage("."); err == nil {
		fmt.Printf("  disk:   %.1f GiB free of %.1f GiB\n",
			float64(du.Free)/(1<<30), float64(du.Total)/(1<<30))
	}
	fmt.Println()
}
