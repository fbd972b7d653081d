// Copyright EcoInfo AI, 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/cache"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/index"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and index the abstract cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <species>",
	Short: "Print every cached abstract for a species as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		text, err := c.AbstractsText(args[0])
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Fprintf(os.Stderr, "Species %q is not in the cache.\n", args[0])
			return nil
		}
		fmt.Print(text)
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		meta, err := c.Statistics()
		if err != nil {
			return err
		}
		fmt.Printf("Created:      %s\n", meta.CreatedAt)
		fmt.Printf("Last updated: %s\n", meta.LastUpdated)
		fmt.Printf("Species:      %d\n", meta.TotalSpecies)
		fmt.Printf("Papers:       %d\n", meta.TotalPapers)
		return nil
	},
}

var cacheIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the full-text index from the cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openCache(cmd)
		if err != nil {
			return err
		}
		species, err := c.Species()
		if err != nil {
			return err
		}

		cfg := loadMinerConfig()
		store, err := index.Open(cfg.Cache.IndexFile)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Rebuild(cmd.Context(), species)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d papers from %d species.\n", n, len(species))
		return nil
	},
}

var cacheSearchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Full-text search over indexed titles and abstracts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg := loadMinerConfig()
		store, err := index.Open(cfg.Cache.IndexFile)
		if err != nil {
			return err
		}
		defer store.Close()

		hits, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, h := range hits {
			fmt.Printf("[%s] %s (%s)\n", h.Species, h.Title, h.Year)
			if len(h.Authors) > 0 {
				fmt.Printf("    %s\n", strings.Join(h.Authors, ", "))
			}
			fmt.Printf("    key=%s doi=%s\n", h.ZoteroKey, h.DOI)
		}
		return nil
	},
}

func openCache(cmd *cobra.Command) (*cache.Cache, error) {
	path, _ := cmd.Flags().GetString("cache")
	if path == "" {
		path = loadMinerConfig().Cache.File
	}
	return cache.Open(path)
}

func init() {
	cacheCmd.PersistentFlags().String("cache", "", "abstract cache file (default from config)")
	cacheSearchCmd.Flags().Int("limit", 20, "maximum number of matches")

	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheIndexCmd)
	cacheCmd.AddCommand(cacheSearchCmd)
	rootCmd.AddCommand(cacheCmd)
}
