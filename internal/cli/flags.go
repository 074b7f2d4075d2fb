package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sourceFlags maps shared flag names to config keys
var sourceFlags = map[string]string{
	"source":         "source.id",
	"range":          "source.range",
	"respect-robots": "source.respect_robots",
	"transport":      "service.transport",
	"endpoint":       "service.endpoint",
	"insecure":       "service.insecure",
	"http-proxy":     "service.http_proxy",
	"https-proxy":    "service.https_proxy",
	"llm-provider":   "llm.provider",
	"llm-model":      "llm.model",
}

// addSourceFlags declares the flags every generating command accepts
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", "", "spreadsheet id, published sheet URL or path to a .csv/.xlsx file")
	f.String("range", "", "A1 range to read, e.g. Sheet1!A1:B")
	f.Bool("respect-robots", false, "honor robots.txt when reading URL sources")
	f.String("transport", "", "generation transport (grpc, http, local, llm)")
	f.String("endpoint", "", "generation service endpoint")
	f.Bool("insecure", false, "disable TLS for the gRPC transport")
	f.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	f.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	f.String("llm-provider", "", "LLM provider for the llm transport (openai, ollama)")
	f.String("llm-model", "", "LLM model name")
	f.Bool("no-cache", false, "disable cache (force fresh fetch)")
}

// bindSourceFlags binds the shared flags of cmd; called from PreRunE so
// the last command to run owns the binding.
func bindSourceFlags(cmd *cobra.Command, args []string) error {
	for name, key := range sourceFlags {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		viper.Set("cache.enabled", false)
	}
	return nil
}
