package classify

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Classifier sends a classification prompt to an external model and returns
// its raw text response. No valid JSON is guaranteed; see RepairJSON.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// GeminiClassifier is the production Classifier backed by the Gemini API.
type GeminiClassifier struct {
	client *genai.Client
	model  string
}

// NewGeminiClassifier creates a Gemini-backed classifier. API credentials are
// picked up from the environment by the genai client.
func NewGeminiClassifier(ctx context.Context, model string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClassifier: create genai client: %w", err)
	}
	return &GeminiClassifier{client: client, model: model}, nil
}

// Classify sends the prompt and returns the model's raw text.
func (c *GeminiClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Classify: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Classify: empty response from model")
	}
	return text, nil
}
