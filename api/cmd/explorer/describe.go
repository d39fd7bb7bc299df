package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"artifact-explorer/api/internal/artifact"
	"artifact-explorer/api/internal/logger"
	"artifact-explorer/api/internal/util"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe one artifact and print the text",
	Example: `  explorer describe --name "Rosetta Stone" --words 100
  explorer describe --name "Bayeux Tapestry" --image tapestry.jpg --provider openai`,
	RunE: runDescribe,
}

var (
	describeName  string
	describeWords int
	describeImage string
)

func init() {
	describeCmd.Flags().StringVar(&describeName, "name", "", "artifact name (required)")
	describeCmd.Flags().IntVar(&describeWords, "words", artifact.DefaultWordCount, "approximate length of the description")
	describeCmd.Flags().StringVar(&describeImage, "image", "", "path to an optional photo")
	_ = describeCmd.MarkFlagRequired("name")
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	req := artifact.Request{Name: describeName, WordCount: describeWords}
	if describeImage != "" {
		data, err := os.ReadFile(describeImage)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		req.Image = &artifact.Image{
			Data:     data,
			MIMEType: util.PickMIME("", "", data),
			Filename: describeImage,
		}
	}
	if err := req.Validate(); err != nil {
		return err
	}

	engine, err := buildEngines(cfg).GetEngine("")
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context(), log)
	text, err := engine.Describe(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}
