// Copyright EcoInfo AI, 2026. All rights reserved.

// Package main is the entry point for the lit-miner CLI: species-driven
// literature mining into Zotero and a local abstract cache.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/secrets"
	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, else the secret value for
// key, else "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the lit-miner CLI.
var rootCmd = &cobra.Command{
	Use:   "lit-miner",
	Short: "Mine species literature into Zotero and an abstract cache",
	Long: `lit-miner aggregates bibliographic search results for a list of species
from PubMed and Semantic Scholar, deduplicates them, archives them into a
Zotero library (one collection per species), and caches the abstracts in a
species-partitioned YAML file for downstream analysis.

Credentials come from the environment (a .env file is honored), from
.secrets/ key files, or from the config file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional, matching the usual local-dev setup.
		godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lit-miner.yaml or ~/.config/lit-miner/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lit-miner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lit-miner"))
		}
	}

	viper.SetEnvPrefix("LIT_MINER")
	viper.AutomaticEnv()

	// Bare env names kept for compatibility with existing .env files.
	viper.BindEnv("zotero.library_id", "LIT_MINER_ZOTERO_LIBRARY_ID", "ZOTERO_LIBRARY_ID")
	viper.BindEnv("zotero.api_key", "LIT_MINER_ZOTERO_API_KEY", "ZOTERO_API_KEY")
	viper.BindEnv("zotero.library_type", "LIT_MINER_ZOTERO_LIBRARY_TYPE", "ZOTERO_LIBRARY_TYPE")
	viper.BindEnv("search.semantic_scholar_api_key", "LIT_MINER_SEMANTIC_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")
	viper.BindEnv("search.email", "LIT_MINER_EMAIL", "EMAIL")

	viper.SetDefault("search.limit", 10)
	viper.SetDefault("search.timeout", 30*time.Second)
	viper.SetDefault("search.user_agent", "lit-miner/"+version)
	viper.SetDefault("search.enable_pubmed", true)
	viper.SetDefault("search.enable_semantic_scholar", true)
	viper.SetDefault("zotero.library_type", "group")
	viper.SetDefault("cache.file", "data/abstracts_cache.yaml")
	viper.SetDefault("cache.index_file", "data/abstracts.db")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadMinerConfig resolves the full configuration from viper, with
// .secrets/ key files as fallback for credentials.
func loadMinerConfig() types.MinerConfig {
	cfg := types.MinerConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			Limit:                 viper.GetInt("search.limit"),
			Email:                 viper.GetString("search.email"),
			EnablePubMed:          viper.GetBool("search.enable_pubmed"),
			EnableSemanticScholar: viper.GetBool("search.enable_semantic_scholar"),
			SemanticScholarAPIKey: viper.GetString("search.semantic_scholar_api_key"),
		},
		Zotero: types.ZoteroConfig{
			LibraryID:   viper.GetString("zotero.library_id"),
			LibraryType: viper.GetString("zotero.library_type"),
			APIKey:      viper.GetString("zotero.api_key"),
		},
		Cache: types.CacheConfig{
			File:      viper.GetString("cache.file"),
			IndexFile: viper.GetString("cache.index_file"),
		},
	}

	cfg.Search.Email = secretDefault(secrets.KeyNCBIEmail, cfg.Search.Email)
	cfg.Search.SemanticScholarAPIKey = secretDefault(secrets.KeySemanticScholarAPIKey, cfg.Search.SemanticScholarAPIKey)
	cfg.Zotero.LibraryID = secretDefault(secrets.KeyZoteroLibraryID, cfg.Zotero.LibraryID)
	cfg.Zotero.APIKey = secretDefault(secrets.KeyZoteroAPIKey, cfg.Zotero.APIKey)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
