package core

import "math"

// StrategyKind 标识候选的来源策略，用于融合加权与解释。
type StrategyKind string

const (
	StrategyContent       StrategyKind = "content"
	StrategyCollaborative StrategyKind = "collaborative"
	StrategyPopularity    StrategyKind = "popularity"
	StrategyMood          StrategyKind = "mood"
)

// StrategyKinds 返回全部策略，顺序固定（内容 → 协同 → 热度 → 情绪）。
func StrategyKinds() []StrategyKind {
	return []StrategyKind{
		StrategyContent,
		StrategyCollaborative,
		StrategyPopularity,
		StrategyMood,
	}
}

// Candidate 是策略产出的瞬态候选：(曲目, 原始分, 来源) 三元组。
// 只在单次请求内存在，不落库。
type Candidate struct {
	TrackID  string
	RawScore float64
	Source   StrategyKind
}

// WeightSumTolerance 是权重向量求和校验的浮点容差。
const WeightSumTolerance = 1e-9

// WeightVector 是四个策略的混合系数。
// 不变量：所有分量 ≥ 0 且总和为 1（容差 WeightSumTolerance）。
// 每次请求重新计算，不跨请求缓存（画像可能随时变化）。
type WeightVector struct {
	Content       float64 `json:"content" yaml:"content"`
	Collaborative float64 `json:"collaborative" yaml:"collaborative"`
	Popularity    float64 `json:"popularity" yaml:"popularity"`
	Mood          float64 `json:"mood" yaml:"mood"`
}

// Of 返回指定策略的权重；未知策略权重为 0。
func (w WeightVector) Of(kind StrategyKind) float64 {
	switch kind {
	case StrategyContent:
		return w.Content
	case StrategyCollaborative:
		return w.Collaborative
	case StrategyPopularity:
		return w.Popularity
	case StrategyMood:
		return w.Mood
	default:
		return 0
	}
}

// Sum 返回分量之和。
func (w WeightVector) Sum() float64 {
	return w.Content + w.Collaborative + w.Popularity + w.Mood
}

// Valid 校验权重不变量：非负且求和为 1（容差内）。
func (w WeightVector) Valid() bool {
	if w.Content < 0 || w.Collaborative < 0 || w.Popularity < 0 || w.Mood < 0 {
		return false
	}
	return math.Abs(w.Sum()-1.0) <= WeightSumTolerance
}

// Normalize 返回按比例归一化后的权重；总和为 0 时原样返回。
func (w WeightVector) Normalize() WeightVector {
	sum := w.Sum()
	if sum <= 0 {
		return w
	}
	return WeightVector{
		Content:       w.Content / sum,
		Collaborative: w.Collaborative / sum,
		Popularity:    w.Popularity / sum,
		Mood:          w.Mood / sum,
	}
}

// Clamp 返回逐分量 max(0, x) 之后的权重。
func (w WeightVector) Clamp() WeightVector {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return WeightVector{
		Content:       clamp(w.Content),
		Collaborative: clamp(w.Collaborative),
		Popularity:    clamp(w.Popularity),
		Mood:          clamp(w.Mood),
	}
}

// RankedResult 是融合后的最终条目，按 FusedScore 降序、同分按
// TrackID 升序（字典序）排列，Rank 从 1 开始。
type RankedResult struct {
	TrackID    string  `json:"track_id"`
	FusedScore float64 `json:"fused_score"`
	Rank       int     `json:"rank"`
}

// Status 是推荐结果的显式成败标记，调用方据此区分
// “没有可推荐内容”与“系统故障”。
type Status string

const (
	// StatusOK 表示四个策略全部正常参与。
	StatusOK Status = "OK"
	// StatusPartial 表示至少一个策略被降级（无数据 / 超时 / 检索失败）。
	StatusPartial Status = "PARTIAL"
	// StatusEmpty 表示包括热度兜底在内均无产出，结果为空列表。
	StatusEmpty Status = "EMPTY"
)

// Explanation 是某 (用户, 曲目) 对的事后归因：各策略单曲分、
// 当时的权重向量、以及加权后的融合分。
type Explanation struct {
	TrackID          string                   `json:"track_id"`
	PerStrategyScore map[StrategyKind]float64 `json:"per_strategy_score"`
	Weights          WeightVector             `json:"weights"`
	FusedScore       float64                  `json:"fused_score"`
}
