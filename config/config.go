// Package config 从 YAML/JSON 文件装配融合引擎。
// 所有字段都有零值默认，空配置文件等价于 fusion.NewEngine(port)。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是引擎的完整配置结构（支持 YAML/JSON）。
type Config struct {
	Engine EngineConfig `yaml:"engine" json:"engine"`
}

// EngineConfig 汇总引擎与各策略的可调参数。
type EngineConfig struct {
	// StrategyTimeoutSec 单个策略的执行上限（秒），0 使用默认 3s。
	StrategyTimeoutSec int `yaml:"strategy_timeout" json:"strategy_timeout"`

	// MoodShare 情绪策略在权重中的固定份额，0 使用默认 0.1。
	MoodShare float64 `yaml:"mood_share" json:"mood_share"`

	Content       ContentConfig       `yaml:"content" json:"content"`
	Collaborative CollaborativeConfig `yaml:"collaborative" json:"collaborative"`
	Popularity    PopularityConfig    `yaml:"popularity" json:"popularity"`
	Mood          MoodConfig          `yaml:"mood" json:"mood"`
	Filters       FilterConfig        `yaml:"filters" json:"filters"`
}

type ContentConfig struct {
	TopTags       int `yaml:"top_tags" json:"top_tags"`
	HistoryWindow int `yaml:"history_window" json:"history_window"`
}

type CollaborativeConfig struct {
	TopKNeighbors int     `yaml:"top_k_neighbors" json:"top_k_neighbors"`
	Threshold     float64 `yaml:"threshold" json:"threshold"`
	HistoryLimit  int     `yaml:"history_limit" json:"history_limit"`
}

type PopularityConfig struct {
	MaxViews     float64 `yaml:"max_views" json:"max_views"`
	MaxReactions float64 `yaml:"max_reactions" json:"max_reactions"`
	MaxComments  float64 `yaml:"max_comments" json:"max_comments"`
	ScanLimit    int     `yaml:"scan_limit" json:"scan_limit"`
}

type MoodConfig struct {
	RecentListens int `yaml:"recent_listens" json:"recent_listens"`
}

type FilterConfig struct {
	// Seen 为 true 时启用已收藏曲目过滤。
	Seen bool `yaml:"seen" json:"seen"`

	// ExcludeIDs 静态排除的曲目 ID 列表（下架、版权受限等）。
	ExcludeIDs []string `yaml:"exclude_ids" json:"exclude_ids"`

	// Rules 是 CEL 表达式列表，任意一条为 true 即过滤该曲目。
	// 变量：track（曲目字段）、rctx（请求上下文）。
	Rules []string `yaml:"rules" json:"rules"`
}

// LoadFromYAML 从 YAML 文件加载配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &cfg, nil
}

// StrategyTimeout 返回配置的策略超时。
func (c EngineConfig) StrategyTimeout() time.Duration {
	if c.StrategyTimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.StrategyTimeoutSec) * time.Second
}
