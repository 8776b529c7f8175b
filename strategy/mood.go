package strategy

import (
	"context"
	"math/rand"

	"github.com/rushteam/tunekit/core"
)

// 情绪推断的固定阈值（valence / energy）。
const (
	moodHighThreshold = 0.6
	moodLowThreshold  = 0.4
)

// MoodScorer 是基于情绪的策略。
//
// 目标情绪的确定顺序：
//  1. 请求显式指定（rctx.Mood）
//  2. 最近 RecentListens 次收听的情绪多数票
//  3. 多数票无果时按平均 valence/energy 推断（阈值 0.4/0.6）：
//     高 valence 高 energy → happy；高 valence 低 energy → relaxed；
//     低 valence 高 energy → intense；双低 → sad；其余 → neutral
//
// 结果顺序刻意随机（提升多样性），随机源由请求级种子驱动，
// 测试固定种子即可复现。
type MoodScorer struct {
	Port core.RetrievalPort

	// RecentListens 是情绪推断回看的收听条数，默认 10。
	RecentListens int
}

func (s *MoodScorer) Name() string           { return "strategy.mood" }
func (s *MoodScorer) Kind() core.StrategyKind { return core.StrategyMood }

func (s *MoodScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]core.Candidate, error) {
	if s.Port == nil || rctx == nil {
		return nil, core.ErrStrategyUnavailable
	}

	mood, err := s.targetMood(ctx, rctx)
	if err != nil {
		return nil, err
	}

	limit := rctx.StrategyLimit()
	cands, err := s.Port.QueryBySimilarity(ctx, core.SimilarityQuery{
		Mood:     mood,
		OnlyMood: true,
		Limit:    limit,
	})
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(cands) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	// 随机扰动叠加在匹配分上，拉开同分曲目的顺序
	rng := rand.New(rand.NewSource(rctx.RandSeed))
	out := make([]core.Candidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, core.Candidate{
			TrackID:  c.TrackID,
			RawScore: c.RawScore + rng.Float64(),
			Source:   core.StrategyMood,
		})
	}
	sortCandidates(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ScoreTrack 返回单曲的确定性情绪分：情绪匹配为 MoodMatchBoost，
// 否则 0。随机扰动不参与归因（解释必须可复算）。
func (s *MoodScorer) ScoreTrack(
	ctx context.Context,
	rctx *core.RecommendContext,
	trackID string,
) (float64, error) {
	if s.Port == nil || rctx == nil {
		return 0, core.ErrStrategyUnavailable
	}

	mood, err := s.targetMood(ctx, rctx)
	if err != nil {
		return 0, err
	}

	t, err := s.Port.GetTrack(ctx, trackID)
	if err != nil {
		return 0, core.StrategyUnavailable(err)
	}
	if t.Mood == mood {
		return core.MoodMatchBoost, nil
	}
	return 0, nil
}

// targetMood 解析本次请求的目标情绪；无任何情绪信号时降级。
func (s *MoodScorer) targetMood(ctx context.Context, rctx *core.RecommendContext) (core.Mood, error) {
	if rctx.Mood != "" {
		return rctx.Mood, nil
	}
	if rctx.UserID == "" {
		return "", core.ErrStrategyUnavailable
	}
	return s.inferMood(ctx, rctx.UserID)
}

// inferMood 从近期收听推断情绪：先多数票，无票时按音频特征阈值。
func (s *MoodScorer) inferMood(ctx context.Context, userID string) (core.Mood, error) {
	recent := s.RecentListens
	if recent <= 0 {
		recent = 10
	}

	inters, err := s.Port.QueryUserInteractions(ctx, userID, recent)
	if err != nil {
		return "", core.StrategyUnavailable(err)
	}
	if len(inters) == 0 {
		return "", core.ErrStrategyUnavailable
	}

	votes := make(map[core.Mood]int)
	var valenceSum, energySum float64
	var n int
	for _, in := range inters {
		t, err := s.Port.GetTrack(ctx, in.TrackID)
		if err != nil {
			continue
		}
		if t.Mood != "" {
			votes[t.Mood]++
		}
		valenceSum += t.Audio.Valence
		energySum += t.Audio.Energy
		n++
	}
	if n == 0 {
		return "", core.ErrStrategyUnavailable
	}

	if len(votes) > 0 {
		// 多数票；平票时按固定情绪顺序取第一个，保证确定性
		var best core.Mood
		bestVotes := -1
		for _, mood := range []core.Mood{core.MoodHappy, core.MoodRelaxed, core.MoodIntense, core.MoodSad, core.MoodNeutral} {
			if votes[mood] > bestVotes {
				best = mood
				bestVotes = votes[mood]
			}
		}
		if bestVotes > 0 {
			return best, nil
		}
	}

	return InferMoodFromFeatures(valenceSum/float64(n), energySum/float64(n)), nil
}

// InferMoodFromFeatures 按平均 valence/energy 与固定阈值推断情绪。
func InferMoodFromFeatures(valence, energy float64) core.Mood {
	switch {
	case valence > moodHighThreshold && energy > moodHighThreshold:
		return core.MoodHappy
	case valence > moodHighThreshold && energy <= moodLowThreshold:
		return core.MoodRelaxed
	case valence <= moodLowThreshold && energy > moodHighThreshold:
		return core.MoodIntense
	case valence <= moodLowThreshold && energy <= moodLowThreshold:
		return core.MoodSad
	default:
		return core.MoodNeutral
	}
}

var _ Scorer = (*MoodScorer)(nil)
