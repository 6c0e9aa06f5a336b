// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/article-summarizer/internal/artifact"
	"github.com/pdiddy/article-summarizer/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.json>",
	Short: "Print a summary or enriched record",
	Long: `Inspect reads a record written by summarize or enrich and prints it as
YAML with the schema fields first. Use --json to print it in the on-disk
JSON format instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "print JSON instead of YAML")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	rec, err := artifact.ReadSummary(args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		data, err := artifact.Encode(rec)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	return writeYAML(os.Stdout, rec)
}

// writeYAML renders rec as a YAML mapping in rec.Keys() order.
func writeYAML(w io.Writer, rec types.Summary) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range rec.Keys() {
		var val yaml.Node
		if err := val.Encode(rec[k]); err != nil {
			return fmt.Errorf("encoding field %s: %w", k, err)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}
