package gemini

import (
	"encoding/json"
	"fmt"

	"PerpScout/internal/domain/models"

	"google.golang.org/genai"
)

var picksSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"pair":           {Type: genai.TypeString},
			"recommendation": {Type: genai.TypeString, Enum: []string{"LONG", "SHORT"}},
			"justification":  {Type: genai.TypeString},
			"entryPrice":     {Type: genai.TypeNumber},
			"takeProfit":     {Type: genai.TypeNumber},
			"stopLoss":       {Type: genai.TypeNumber},
			"gridLevels": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"price": {Type: genai.TypeNumber},
						"size":  {Type: genai.TypeString},
					},
					Required: []string{"price", "size"},
				},
			},
		},
		Required: []string{"pair", "recommendation", "justification", "entryPrice", "takeProfit", "stopLoss", "gridLevels"},
	},
}

const promptTemplate = `You are an expert trading analyst for Binance USDT-margined futures. Your goal is to pick the %[1]d highest-probability trades from a pre-vetted list, aiming for a 10%% profit per cycle.

The current overall market trend, based on the reference instrument's 24h performance, is "%[2]s".

The list below was screened on strict criteria:
1. High liquidity: quote volume above 10M USDT and open interest above 1M.
2. Significant volatility: absolute 24h price change of at least 2%%.
3. Stable funding: funding rate between -0.1%% and +0.1%%.

Candidates:
%[3]s

Select the best %[1]d opportunities.
- If "Bullish", prioritize LONG positions.
- If "Bearish", prioritize SHORT positions.
- If "Neutral", judge each candidate on its own merit.

For each pick return the pair exactly as listed, LONG or SHORT, and a short justification. The entry price must be realistic for the lastPrice. Respond in the specified JSON format.`

func buildPrompt(candidates []models.Candidate, trend models.Trend, maxPicks int) (string, error) {
	b, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode candidates: %w", err)
	}
	return fmt.Sprintf(promptTemplate, maxPicks, trend, b), nil
}
