package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"artifact-explorer/api/internal/config"
	"artifact-explorer/api/internal/curator"
	"artifact-explorer/api/internal/curator/gemini"
	"artifact-explorer/api/internal/curator/openai"
	"artifact-explorer/api/internal/logger"
)

var (
	v   = viper.New()
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "explorer",
	Short: "Historical Artifact Explorer: AI-written descriptions of historical artifacts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadFrom(v)
		if err != nil {
			return err
		}
		log, err = logger.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: gemini or openai (env LLM_PROVIDER)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (env LOG_LEVEL)")
	_ = v.BindPFlag("llm_provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd, describeCmd)
}

// buildEngines creates both engines; a missing key only fails at call time.
func buildEngines(cfg *config.Config) *curator.Engines {
	oa := openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if cfg.OpenAIBase != "" {
		oa.WithBaseURL(cfg.OpenAIBase)
	}
	return &curator.Engines{
		Gemini:  curator.WithMetrics(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)),
		OpenAI:  curator.WithMetrics(oa),
		Default: cfg.LLMProvider,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
