package openai

import (
	"context"
	"fmt"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"frontierBot/internal/finance"
)

type Commentator struct {
	cli oa.Client
}

func NewCommentator(apiKey string) *Commentator {
	client := oa.NewClient(option.WithAPIKey(apiKey))
	return &Commentator{cli: client}
}

const commentarySystemPrompt = `You are a financial analyst explaining a two-asset efficient frontier to a retail investor.
You receive summary statistics of two return series X and Y and a table of portfolios mixing them.

Your response must follow this structure:

**Diversification:**
[What the correlation implies for combining X and Y]

**Trade-off:**
[How return and risk move across the portfolios, naming them by letter]

**Notable portfolios:**
[The lowest-risk portfolio and any portfolio dominated by another one]

Guidelines:
- Only use the numbers provided; do not invent data
- "N/A" means the value is undefined because a series has no variance
- Keep it under 200 words
- This is not investment advice; say so in one short sentence at the end`

// BuildPrompt renders a report into the user message sent to the model.
func BuildPrompt(report *finance.FrontierReport) string {
	return fmt.Sprintf("Statistics:\n%s\nPortfolios:\n%s",
		finance.FormatStatisticsText(report.Statistics, report.Precision),
		finance.FormatFrontierTable(report.Points, report.Precision))
}

// Explain asks the model for a short commentary on report.
func (c *Commentator) Explain(ctx context.Context, report *finance.FrontierReport) (string, error) {
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: "gpt-4",
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(commentarySystemPrompt),
			oa.UserMessage(BuildPrompt(report)),
		},
		MaxTokens: oa.Int(600),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
