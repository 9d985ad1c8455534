package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardlens/cardlens/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap the cardlens config and data directories",
	Long: `Initialize ~/.cardlens/ with a default cardlens.yaml, a .env template
for API keys, and the catalog data directory.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := config.CardlensDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}
	printOK("", fmt.Sprintf("cardlens directory ready: %s", dir))

	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	dotenvPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	printOK("", fmt.Sprintf(".env template ready: %s", dotenvPath))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.ImagesDir(), 0o755); err != nil {
		return fmt.Errorf("cannot create data dir %s: %w", cfg.DataDir, err)
	}
	printOK("", fmt.Sprintf("data directory ready: %s", cfg.DataDir))

	printInfo("", "next: fill in ~/.cardlens/.env, then run 'cardlens sync' and 'cardlens build-index'")
	return nil
}
