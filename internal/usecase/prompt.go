package usecase

import (
	"fmt"
	"strings"

	"rai-agent/internal/domain"
	"rai-agent/internal/format"
	"rai-agent/internal/supply"
)

func buildPersonaPrompt() string {
	return strings.Join([]string{
		"You are RAI, an advanced AI designed to analyze the meme coin market.",
		"You provide users with insights into token trends, risks, and opportunities.",
		"You ONLY discuss topics related to shitcoins, meme coins, and the crypto market.",
		"If a user asks about something unrelated to crypto, politely redirect them back to the topic.",
	}, " ")
}

// buildChatSystemPrompt is used for free-text questions. tokenName is the
// token the conversation is about; the user's text stays untouched.
func buildChatSystemPrompt(tokenName string) string {
	prompt := buildPersonaPrompt()
	if name := normalizePromptInput(tokenName); name != "" {
		prompt += fmt.Sprintf("\n\nThe token currently in focus is %s.", name)
	}
	return prompt
}

func buildNarrationSystemPrompt() string {
	return strings.Join([]string{
		buildPersonaPrompt(),
		"",
		"You will receive on-chain facts about a single token. Summarize them for a trader in a few short sentences.",
		"Use only the facts provided. Do not invent prices, holders or links.",
		"",
		supply.Rubric(),
	}, "\n")
}

// buildAnalysisPrompt turns the resolved token facts into the user turn of a
// narration request. transfers is how many early transfers fed the
// concentration figure.
func buildAnalysisPrompt(a domain.TokenAnalysis, transfers int) string {
	info := a.TokenInfo
	lines := []string{
		fmt.Sprintf("Analyze the token at contract address %s.", a.ContractAddress),
		"",
		fmt.Sprintf("Name: %s", info.Name),
		fmt.Sprintf("Symbol: %s", info.Symbol),
		fmt.Sprintf("Total supply: %s", info.TotalSupplyFormatted),
		fmt.Sprintf("Holders: %d", info.HolderCount),
		fmt.Sprintf("Market cap: %s", info.MarketCapFormatted),
		fmt.Sprintf("Creator: %s", info.Creator),
		fmt.Sprintf("Created: %s", info.CreatedTimeFormatted),
	}
	if d := normalizePromptInput(info.Description); d != "" {
		lines = append(lines, "Description: "+d)
	}
	if a.SupplyPercentage != nil {
		pct := *a.SupplyPercentage
		lines = append(lines,
			fmt.Sprintf("Share of supply moved in the first %d transfers: %s%% (%s concentration)",
				transfers, format.Magnitude(pct), supply.BucketFor(pct)),
		)
	}
	return strings.Join(lines, "\n")
}

func normalizePromptInput(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}
