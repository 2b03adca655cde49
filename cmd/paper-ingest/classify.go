// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-ingest/internal/acquire"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [inputs...]",
	Short: "Show how inputs would be classified and fetched",
	Long: `Classify reports the kind (arxiv, doi, url, local) of each input, its
canonical identifier, and the URL an import would download from. It performs
no network or filesystem access.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return writeClassified(cmd.OutOrStdout(), classifyInputs(args), asJSON)
	},
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output as JSON instead of YAML")
	rootCmd.AddCommand(classifyCmd)
}

// classified is the printable form of an acquire.Reference.
type classified struct {
	Input    string `json:"input" yaml:"input"`
	Kind     string `json:"kind" yaml:"kind"`
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	FetchURL string `json:"fetch_url,omitempty" yaml:"fetch_url,omitempty"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
}

func classifyInputs(inputs []string) []classified {
	out := make([]classified, 0, len(inputs))
	for _, in := range inputs {
		ref := acquire.Classify(in)
		out = append(out, classified{
			Input:    in,
			Kind:     ref.Kind.String(),
			ID:       ref.ID,
			URL:      ref.URL,
			Path:     ref.Path,
			FetchURL: acquire.FetchURL(ref),
			Filename: acquire.Filename(ref),
		})
	}
	return out
}

func writeClassified(w io.Writer, items []classified, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling classification: %w", err)
	}
	_, err = w.Write(data)
	return err
}
