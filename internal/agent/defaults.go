package agent

import (
	"time"

	"PortfolioArena/internal/model"
)

var defaultInception = model.NewDate(2026, time.February, 11)

// DefaultAgents returns the four agents seeded into an empty database.
func DefaultAgents() []NewAgent {
	return []NewAgent{
		{
			ID: "gemini", Name: "Gemini", Color: "#4285F4",
			InceptionDate: defaultInception, InitialCapital: model.DefaultInitialCapital,
			Holdings: []NewHolding{
				{"NVDA", 15}, {"LLY", 13}, {"VST", 12}, {"VRT", 10}, {"AMZN", 10},
				{"MSFT", 9}, {"ETN", 9}, {"BX", 8}, {"MELI", 7}, {"HWM", 7},
			},
		},
		{
			ID: "grok", Name: "Grok", Color: "#1DA1F2",
			InceptionDate: defaultInception, InitialCapital: model.DefaultInitialCapital,
			Holdings: []NewHolding{
				{"NVDA", 15}, {"MSFT", 12}, {"AMZN", 12}, {"TSM", 10}, {"XOM", 10},
				{"AVGO", 9}, {"BMY", 8}, {"JNJ", 8}, {"COST", 8}, {"VRSK", 8},
			},
		},
		{
			ID: "claude", Name: "Claude", Color: "#8B5CF6",
			InceptionDate: defaultInception, InitialCapital: model.DefaultInitialCapital,
			Holdings: []NewHolding{
				{"GOOGL", 15}, {"LLY", 13}, {"NEM", 12}, {"VST", 12}, {"GEV", 10},
				{"META", 10}, {"AEM", 8}, {"CEG", 8}, {"GE", 7}, {"FCX", 5},
			},
		},
		{
			ID: "gpt", Name: "GPT", Color: "#10A37F",
			InceptionDate: defaultInception, InitialCapital: model.DefaultInitialCapital,
			Holdings: []NewHolding{
				{"NVDA", 12}, {"MSFT", 12}, {"AMZN", 10}, {"ANET", 10}, {"ETN", 10},
				{"LLY", 10}, {"JPM", 10}, {"RTX", 10}, {"GOOGL", 8}, {"GEV", 8},
			},
		},
	}
}
