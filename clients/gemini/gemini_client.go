package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClientI is the opaque text-generation capability used by the advisory
// assembler. The content of the completion is not interpreted here.
type ClientI interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type generateRequest struct {
	Contents []content `json:"contents"`
	// maxOutputTokens and friends go here
	GenerationConfig map[string]interface{} `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a Gemini client. The URL and key are supplied at
// construction so nothing in the process depends on shared mutable state.
func NewClient(apiURL, apiKey string) ClientI {
	return &client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (c *client) GenerateText(ctx context.Context, prompt string) (string, error) {
	requestData := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: map[string]interface{}{
			"maxOutputTokens": 200000,
		},
	}
	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return "", err
	}

	apiEndpoint := c.apiURL + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, "POST", apiEndpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var rawResponse generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResponse); err != nil {
		return "", err
	}
	if len(rawResponse.Candidates) == 0 || len(rawResponse.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	generatedText := rawResponse.Candidates[0].Content.Parts[0].Text
	cleanedText := strings.TrimPrefix(generatedText, "```json")
	cleanedText = strings.TrimPrefix(cleanedText, "```")
	cleanedText = strings.TrimSuffix(cleanedText, "```")
	return strings.TrimSpace(cleanedText), nil
}
