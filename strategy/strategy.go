package strategy

import (
	"context"
	"sort"

	"github.com/rushteam/tunekit/core"
)

// Scorer 表示一个可独立失败的策略打分单元（内容/协同/热度/情绪）。
// 你可以把它理解为"可并发 fan-out 的策略单元"：四个实现互不共享
// 可变状态，只读 RetrievalPort。
//
// 失败语义：任何检索错误、无历史、冷启动都返回空候选 +
// core.ErrStrategyUnavailable（经 core.StrategyUnavailable 包装），
// 而不是让整次请求失败。
type Scorer interface {
	Name() string
	Kind() core.StrategyKind

	// Score 针对 (用户, 上下文) 产出一份排好序的候选列表，
	// 最多 rctx.StrategyLimit()（即 2×limit）条，给融合留余量。
	Score(ctx context.Context, rctx *core.RecommendContext) ([]core.Candidate, error)

	// ScoreTrack 重算单个曲目在本策略下的得分，供解释器事后归因。
	// 与 Score 全量扫描在相同输入下产生一致的分值。
	ScoreTrack(ctx context.Context, rctx *core.RecommendContext, trackID string) (float64, error)
}

// sortCandidates 按得分降序排列，同分按曲目 ID 升序保证确定性。
func sortCandidates(cands []core.Candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].RawScore != cands[j].RawScore {
			return cands[i].RawScore > cands[j].RawScore
		}
		return cands[i].TrackID < cands[j].TrackID
	})
}

// topCandidates 将得分表转为排好序、截断到 limit 的候选列表。
func topCandidates(scores map[string]float64, kind core.StrategyKind, limit int) []core.Candidate {
	out := make([]core.Candidate, 0, len(scores))
	for id, s := range scores {
		out = append(out, core.Candidate{TrackID: id, RawScore: s, Source: kind})
	}
	sortCandidates(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
