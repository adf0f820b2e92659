package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// apiModel is one entry from an OpenAI-compatible /models endpoint
type apiModel struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available LLM models from API",
	Long: `Fetch and list available LLM models from the configured API endpoint.

Requires LLM_API_KEY and LLM_BASE_URL. Pick a model for extraction with
LLM_MODEL or --llm-model.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	if llmBaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL is required (or --llm-base-url)")
	}
	if apiKey == "" {
		return fmt.Errorf("LLM_API_KEY is required (or --api-key)")
	}

	current := llmModel
	if current == "" {
		current = "(default)"
	}
	printVerbose("Endpoint %s, extraction model %s\n", llmBaseURL, current)

	models, err := fetchModels(llmBaseURL, apiKey)
	if err != nil {
		fmt.Printf("Could not fetch models: %v\n", err)
		fmt.Println("Your provider may not support /models; set LLM_MODEL directly.")
		return nil
	}
	if len(models) == 0 {
		fmt.Println("No models returned from API.")
		return nil
	}

	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL ID\tOWNER\tCREATED")
	for _, m := range models {
		created := ""
		if m.Created > 0 {
			created = time.Unix(m.Created, 0).Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.OwnedBy, created)
	}
	return w.Flush()
}

func fetchModels(baseURL, apiKey string) ([]apiModel, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/models"

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, body)
	}

	var wrapped struct {
		Data []apiModel `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}

	// Some providers return a bare array
	var models []apiModel
	if err := json.Unmarshal(body, &models); err != nil {
		return nil, fmt.Errorf("unparseable /models response: %w", err)
	}
	return models, nil
}
