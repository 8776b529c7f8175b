package fusion

import (
	"context"

	"github.com/rushteam/tunekit/core"
)

// Explain 对某 (用户, 曲目) 对做事后归因：逐策略重算单曲得分，
// 用与 Recommend 相同的权重向量还原加权分解与融合分。
//
// 在相同输入下，融合分与该曲目参与全量打分时的结果一致；唯一例外
// 是情绪策略的随机扰动——归因只计确定性匹配分（见 MoodScorer.ScoreTrack），
// 传入与原请求相同的种子时两者完全相等。
func (e *Engine) Explain(ctx context.Context, userID, trackID string) (*core.Explanation, error) {
	if userID == "" || trackID == "" {
		return nil, core.ErrInvalidRequest
	}
	if e.Port == nil {
		return nil, core.ErrRetrievalUnavailable
	}

	// 先确认曲目存在，避免返回一份全零的"解释"
	if _, err := e.Port.GetTrack(ctx, trackID); err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{UserID: userID, Limit: 10}
	e.loadProfile(ctx, rctx)
	weights := e.weightsFor(rctx)

	per := make(map[core.StrategyKind]float64, len(e.Scorers))
	var fused float64
	for _, sc := range e.Scorers {
		score, err := sc.ScoreTrack(ctx, rctx, trackID)
		if err != nil {
			if core.IsStrategyUnavailable(err) {
				// 降级策略在归因里记 0 分，与全量打分时缺席一致
				e.Logger.Debug().Str("strategy", sc.Name()).Err(err).
					Msg("strategy unavailable in explain")
				score = 0
			} else {
				return nil, err
			}
		}
		per[sc.Kind()] = score
		fused += weights.Of(sc.Kind()) * score
	}

	return &core.Explanation{
		TrackID:          trackID,
		PerStrategyScore: per,
		Weights:          weights,
		FusedScore:       fused,
	}, nil
}
