package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kittclouds/kotomap/pkg/embed"
)

// Config is the CLI configuration, read from kotomap.yaml.
type Config struct {
	Assets string `yaml:"assets"`  // asset directory (vocab.json, coords.csv, embeddings.bin)
	Dim    int    `yaml:"dim"`     // embedding width
	TopK   int    `yaml:"top_k"`   // ranked neighbor list size
	DB     string `yaml:"db"`      // dataset catalog path
	Index  string `yaml:"index"`   // neighbor index file, relative to the asset dir
}

const defaultConfigFile = "kotomap.yaml"

var (
	configPath string
	flagAssets string
)

func defaultConfig() Config {
	return Config{
		Assets: "assets",
		Dim:    embed.DefaultDim,
		TopK:   embed.DefaultTopK,
		DB:     "kotomap.db",
		Index:  "neighbors.bin",
	}
}

// loadConfig reads the config file when one exists and applies flag
// overrides. A missing default file is not an error; a missing --config
// file is.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	path := configPath
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if explicit || !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if flagAssets != "" {
		cfg.Assets = flagAssets
	}
	if cfg.Dim <= 0 {
		cfg.Dim = embed.DefaultDim
	}
	if cfg.TopK <= 0 {
		cfg.TopK = embed.DefaultTopK
	}
	return cfg, nil
}

// mustLoadConfig loads the config or exits with ExitConfigError.
func mustLoadConfig() Config {
	cfg, err := loadConfig()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: file values merged with flag
overrides and defaults.`,
	Args: cobra.NoArgs,
	RunE: runConfigCmd,
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	if humanOutput {
		fmt.Printf("assets: %s\n", cfg.Assets)
		fmt.Printf("dim:    %d\n", cfg.Dim)
		fmt.Printf("top_k:  %d\n", cfg.TopK)
		fmt.Printf("db:     %s\n", cfg.DB)
		fmt.Printf("index:  %s\n", cfg.Index)
		return nil
	}
	return outputJSON(map[string]interface{}{
		"assets": cfg.Assets,
		"dim":    cfg.Dim,
		"top_k":  cfg.TopK,
		"db":     cfg.DB,
		"index":  cfg.Index,
	})
}
