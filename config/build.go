package config

import (
	"fmt"

	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/filter"
	"github.com/rushteam/tunekit/fusion"
	"github.com/rushteam/tunekit/strategy"
)

// Build 根据配置装配融合引擎。port 由调用方提供
// （store.MemoryStore、store.RedisStore 或自定义实现）。
func (c *Config) Build(port core.RetrievalPort) (*fusion.Engine, error) {
	ec := c.Engine

	engine := fusion.NewEngine(port)
	engine.StrategyTimeout = ec.StrategyTimeout()
	if ec.MoodShare > 0 {
		engine.Calc = &fusion.WeightCalculator{MoodShare: ec.MoodShare}
	}

	engine.Scorers = []strategy.Scorer{
		&strategy.ContentScorer{
			Port:          port,
			TopTags:       ec.Content.TopTags,
			HistoryWindow: ec.Content.HistoryWindow,
		},
		&strategy.CollaborativeScorer{
			Port:          port,
			TopKNeighbors: ec.Collaborative.TopKNeighbors,
			Threshold:     ec.Collaborative.Threshold,
			HistoryLimit:  ec.Collaborative.HistoryLimit,
		},
		&strategy.PopularityScorer{
			Port:         port,
			MaxViews:     ec.Popularity.MaxViews,
			MaxReactions: ec.Popularity.MaxReactions,
			MaxComments:  ec.Popularity.MaxComments,
			ScanLimit:    ec.Popularity.ScanLimit,
		},
		&strategy.MoodScorer{
			Port:          port,
			RecentListens: ec.Mood.RecentListens,
		},
	}

	if ec.Filters.Seen {
		engine.Filters = append(engine.Filters, &filter.SeenFilter{ExtraIDs: ec.Filters.ExcludeIDs})
	}
	if len(ec.Filters.Rules) > 0 {
		rf, err := filter.NewRuleFilter(ec.Filters.Rules)
		if err != nil {
			return nil, fmt.Errorf("compile filter rules: %w", err)
		}
		engine.Filters = append(engine.Filters, rf)
	}

	return engine, nil
}
