// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cardio-medqa/internal/catalog"
	"github.com/pdiddy/cardio-medqa/internal/config"
	"github.com/pdiddy/cardio-medqa/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Index and browse accepted questions (store, query, export)",
	Long: `Catalog keeps a local SQLite index of heart_disease_mcq.jsonl under the
index directory. Use subcommands to ingest the MCQ file, query it by text,
keyword, or knowledge label, or export it to YAML or JSON.`,
}

var catalogFlagKeys = flagKeys{
	"index-dir":   config.KeyCatalogIndexDir,
	"max-results": config.KeyCatalogMaxResults,
}

// --- store subcommand ---

var catalogStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest heart_disease_mcq.jsonl into the catalog",
	Long: `Store reads the MCQ file and replaces the catalog contents in one
transaction, then writes export.yaml. An unchanged file is skipped.`,
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd, flagKeys{"input": config.KeyCatalogInput})
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Invalid > 0 {
		fmt.Fprintf(os.Stdout, "%d line(s) could not be read as MCQ records\n", summary.Invalid)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query the catalog by question text, keyword, or knowledge label",
	Long: `Query lists catalog records whose question contains the given text,
filtered by matched keyword, knowledge label (e.g. US/train), or match tier.
Results are ordered by source file and line.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Query(cmd.Context(), queryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(entries, jsonOutput)
}

func formatQueryOutput(entries []catalog.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-60s  %-6s  %-16s  %s\n",
		"#", "Question", "Answer", "Knowledge", "Keywords")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, e := range entries {
		fmt.Fprintf(os.Stdout, "%-4d  %-60s  %-6s  %-16s  %s\n",
			i+1, truncate(e.Question, 60), e.AnswerIdx, truncate(e.Knowledge, 16), strings.Join(e.Keywords, ", "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(entries))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to export.yaml or
export.json in the index directory. Supports the same filter flags as query.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig(cmd, catalogFlagKeys)
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	scope := "filtered"
	if opts.IsEmpty() {
		scope = "full"
	}

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported %s catalog to %s\n", scope, filepath.Join(cfg.Catalog.IndexDir, catalog.ExportYAMLFile))
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Printf("Exported %s catalog to %s\n", scope, filepath.Join(cfg.Catalog.IndexDir, catalog.ExportJSONFile))
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command, extra ...flagKeys) (*catalog.Store, error) {
	cfg, err := loadConfig(cmd, append([]flagKeys{catalogFlagKeys}, extra...)...)
	if err != nil {
		return nil, err
	}
	return catalog.NewStore(cfg.Catalog)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	text, _ := cmd.Flags().GetString("text")
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	keyword, _ := cmd.Flags().GetString("keyword")
	knowledge, _ := cmd.Flags().GetString("knowledge")
	tier, _ := cmd.Flags().GetString("tier")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Text:       text,
		Keyword:    keyword,
		Knowledge:  knowledge,
		Tier:       tier,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command, limitUsage string) {
	cmd.Flags().String("text", "", "substring of the question text")
	cmd.Flags().String("keyword", "", "filter by matched keyword")
	cmd.Flags().String("knowledge", "", "filter by knowledge label, e.g. US/train")
	cmd.Flags().String("tier", "", fmt.Sprintf("filter by match tier: %s or %s", types.TierStrict, types.TierBroad))
	cmd.Flags().Int("limit", 0, limitUsage)
}

func init() {
	d := config.Defaults().Catalog

	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("index-dir", d.IndexDir, "directory holding cardio.db and export files")
	catalogCmd.PersistentFlags().Int("max-results", d.MaxResults, "default number of query results")

	catalogStoreCmd.Flags().String("input", d.Input, "MCQ file to ingest")

	addFilterFlags(catalogQueryCmd, "maximum results (0 = use default)")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(catalogExportCmd, "maximum records to export (0 = all)")
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
