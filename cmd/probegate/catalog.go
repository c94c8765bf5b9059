package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/probegate-dev/probegate/internal/catalog"
	"github.com/probegate-dev/probegate/internal/config"
)

var catalogFlag string

// catalogCmd groups catalog inspection subcommands.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate capability catalogs",
}

// catalogValidateCmd loads a catalog and reports the first schema error.
var catalogValidateCmd = &cobra.Command{
	Use:   "validate <catalog.yaml>",
	Short: "Validate a capability catalog file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		idx, err := catalog.Load(args[0])
		if err != nil {
			return fmt.Errorf("catalog invalid: %w", err)
		}
		fmt.Printf("✓ %s: key=%s, %d capabilities, categories [%s]\n",
			args[0], idx.Key(), idx.Len(), strings.Join(idx.Categories(), ", "))
		return nil
	},
}

// catalogLookupCmd prints one capability descriptor as JSON.
var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <capability-id>",
	Short: "Print a capability descriptor",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		idx, err := loadCatalogFlag()
		if err != nil {
			return err
		}

		desc, err := idx.Lookup(args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(desc)
	},
}

// catalogShowCmd lists capabilities. Without --catalog it shows every
// configured default catalog, keyed by catalog key.
var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List the capabilities in the configured catalogs",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		sys, err := loadSystemConfig()
		if err != nil {
			sys = &config.SystemConfig{}
		}

		var repo *catalog.Repository
		if catalogFlag == "" && len(sys.Catalogs) > 0 {
			repo, err = loadConfiguredCatalogs(sys)
			if err != nil {
				return err
			}
		} else {
			repo = catalog.NewRepository()
			if _, _, err := resolveCatalog(catalogFlag, sys, repo); err != nil {
				return err
			}
		}

		for _, key := range repo.Keys() {
			idx, err := repo.Get(key)
			if err != nil {
				return err
			}
			fmt.Printf("%s (schema %s, %d capabilities)\n", idx.Key(), idx.SchemaVersion(), idx.Len())
			for _, id := range idx.IDs() {
				desc, err := idx.Lookup(id)
				if err != nil {
					return err
				}
				fmt.Printf("  %-40s %s/%s  %s\n", id, desc.Category, desc.Layer, desc.Status)
			}
		}
		return nil
	},
}

func init() {
	catalogCmd.PersistentFlags().StringVar(&catalogFlag, "catalog", "", "Capability catalog: a configured name or a path")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogLookupCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	rootCmd.AddCommand(catalogCmd)
}

func loadCatalogFlag() (*catalog.Index, error) {
	sys, err := loadSystemConfig()
	if err != nil {
		sys = &config.SystemConfig{}
	}
	idx, _, err := resolveCatalog(catalogFlag, sys, catalog.NewRepository())
	return idx, err
}
