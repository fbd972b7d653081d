// Copyright EcoInfo AI, 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/cache"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/input"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/pipeline"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/search"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/zotero"
)

var mineCmd = &cobra.Command{
	Use:   "mine <species-file>",
	Short: "Search providers for each species and archive the results",
	Long: `Mine runs the full pipeline for every species in the YAML species list:
build one boolean query, search PubMed and Semantic Scholar, deduplicate,
persist unique records to Zotero (one collection per species), and append
the persisted records to the abstract cache.

Runs are at-least-once: mining does not consult previously cached or
Zotero-persisted records, so reprocessing the same species list re-adds the
same papers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		cachePath, _ := cmd.Flags().GetString("cache")
		prefix, _ := cmd.Flags().GetString("collection-prefix")

		cfg := loadMinerConfig()
		if limit > 0 {
			cfg.Search.Limit = limit
		}
		if cachePath != "" {
			cfg.Cache.File = cachePath
		}

		if !dryRun {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration: %w", err)
			}
		}

		queries, err := input.LoadSpeciesList(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Loaded %d species from %s\n", len(queries), args[0])

		client := &http.Client{Timeout: cfg.Search.Timeout}

		var providers []search.Provider
		if cfg.Search.EnablePubMed {
			email := cfg.Search.Email
			if email == "" && dryRun {
				email = "dryrun@example.com"
			}
			if email == "" {
				fmt.Fprintln(os.Stderr, "Warning: no contact email configured, skipping PubMed.")
			} else {
				providers = append(providers, &search.PubMedProvider{
					Client:    client,
					Email:     email,
					UserAgent: cfg.Search.UserAgent,
				})
			}
		}
		if cfg.Search.EnableSemanticScholar {
			providers = append(providers, &search.SemanticScholarProvider{
				Client:    client,
				APIKey:    cfg.Search.SemanticScholarAPIKey,
				UserAgent: cfg.Search.UserAgent,
			})
		}
		if len(providers) == 0 {
			return fmt.Errorf("no search providers available")
		}

		var store pipeline.Store
		if !dryRun {
			store = &zotero.Client{
				HTTP:        client,
				LibraryID:   cfg.Zotero.LibraryID,
				LibraryType: cfg.Zotero.LibraryType,
				APIKey:      cfg.Zotero.APIKey,
				UserAgent:   cfg.Search.UserAgent,
			}
		}

		c, err := cache.Open(cfg.Cache.File)
		if err != nil {
			return err
		}

		summary, err := pipeline.Run(cmd.Context(), queries, providers, store, c, pipeline.Options{
			Limit:            cfg.Search.Limit,
			DryRun:           dryRun,
			CollectionPrefix: prefix,
		}, os.Stdout)
		if err != nil {
			return err
		}

		fmt.Printf("\nProcessing complete: %d species, %d unique results, %d items added",
			summary.Species, summary.UniqueResults, summary.ItemsAdded)
		if summary.SpeciesSkipped > 0 {
			fmt.Printf(" (%d species skipped)", summary.SpeciesSkipped)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	mineCmd.Flags().Bool("dry-run", false, "search but do not persist to Zotero or the cache")
	mineCmd.Flags().Int("limit", 0, "results per provider per species (default from config, 10)")
	mineCmd.Flags().String("cache", "", "abstract cache file (default from config)")
	mineCmd.Flags().String("collection-prefix", "", `Zotero collection prefix (default "eDNA")`)

	rootCmd.AddCommand(mineCmd)
}
