package strategy

import (
	"context"
	"sort"

	"github.com/rushteam/tunekit/core"
)

// ContentScorer 是基于内容的策略（Content-Based）。
//
// 核心思想："用户喜欢具有某些特征的曲目，推荐特征相似的其他曲目"
//
// 打分路径（优先级从高到低）：
//  1. 有种子曲目：对每个种子按 core.TrackSimilarity 语义做相似检索
//     （5 个核心音频特征的高斯核 + 情绪/tag 加性加分），多种子时对
//     每个候选取各种子下的最大相似度
//  2. 无种子但有用户：从最近 HistoryWindow 条交互推导出现频率最高的
//     TopTags 个 tag，仅按 tag 重合度打分
//  3. 两者皆无：降级（StrategyUnavailable）
type ContentScorer struct {
	Port core.RetrievalPort

	// TopTags 是无种子回退路径选取的高频 tag 数，默认 10。
	TopTags int

	// HistoryWindow 是推导用户 tag 时回看的交互条数，默认 20。
	HistoryWindow int
}

func (s *ContentScorer) Name() string           { return "strategy.content" }
func (s *ContentScorer) Kind() core.StrategyKind { return core.StrategyContent }

func (s *ContentScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]core.Candidate, error) {
	if s.Port == nil || rctx == nil {
		return nil, core.ErrStrategyUnavailable
	}

	limit := rctx.StrategyLimit()

	if len(rctx.SeedTrackIDs) > 0 {
		return s.scoreBySeeds(ctx, rctx.SeedTrackIDs, limit)
	}
	if rctx.UserID != "" {
		return s.scoreByUserTags(ctx, rctx.UserID, limit)
	}
	return nil, core.ErrStrategyUnavailable
}

// scoreBySeeds 对每个种子做一次相似检索，候选得分取种子间最大值。
func (s *ContentScorer) scoreBySeeds(
	ctx context.Context,
	seeds []string,
	limit int,
) ([]core.Candidate, error) {
	best := make(map[string]float64)
	var lastErr error

	for _, seedID := range seeds {
		seed, err := s.Port.GetTrack(ctx, seedID)
		if err != nil {
			lastErr = err
			continue
		}

		cands, err := s.Port.QueryBySimilarity(ctx, s.seedQuery(seed, seeds, limit))
		if err != nil {
			lastErr = err
			continue
		}
		for _, c := range cands {
			if c.RawScore > best[c.TrackID] {
				best[c.TrackID] = c.RawScore
			}
		}
	}

	if len(best) == 0 {
		return nil, core.StrategyUnavailable(lastErr)
	}
	return topCandidates(best, core.StrategyContent, limit), nil
}

// seedQuery 把种子曲目展开为相似检索参数；所有种子自身都被排除。
func (s *ContentScorer) seedQuery(seed *core.Track, seeds []string, limit int) core.SimilarityQuery {
	return core.SimilarityQuery{
		Features:   seed.Audio.Core(),
		Tags:       seed.Tags,
		Mood:       seed.Mood,
		ExcludeIDs: seeds,
		Limit:      limit,
	}
}

// scoreByUserTags 是冷种子回退：从交互历史推导用户 tag，仅按重合度打分。
func (s *ContentScorer) scoreByUserTags(
	ctx context.Context,
	userID string,
	limit int,
) ([]core.Candidate, error) {
	tags, err := s.userTags(ctx, userID)
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(tags) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	cands, err := s.Port.QueryBySimilarity(ctx, core.SimilarityQuery{
		Tags:  tags,
		Limit: limit,
	})
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(cands) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	out := make([]core.Candidate, 0, len(cands))
	for _, c := range cands {
		out = append(out, core.Candidate{TrackID: c.TrackID, RawScore: c.RawScore, Source: core.StrategyContent})
	}
	sortCandidates(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// userTags 从最近 HistoryWindow 条交互统计 tag 频次，返回前 TopTags 个。
// 同频 tag 按字典序，保证同一输入下输出稳定。
func (s *ContentScorer) userTags(ctx context.Context, userID string) ([]string, error) {
	window := s.HistoryWindow
	if window <= 0 {
		window = 20
	}
	topTags := s.TopTags
	if topTags <= 0 {
		topTags = 10
	}

	inters, err := s.Port.QueryUserInteractions(ctx, userID, window)
	if err != nil {
		return nil, err
	}
	if len(inters) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	for _, in := range inters {
		t, err := s.Port.GetTrack(ctx, in.TrackID)
		if err != nil {
			continue
		}
		for _, tag := range t.Tags {
			counts[tag]++
		}
	}

	type tagCount struct {
		tag   string
		count int
	}
	sorted := make([]tagCount, 0, len(counts))
	for tag, n := range counts {
		sorted = append(sorted, tagCount{tag: tag, count: n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].tag < sorted[j].tag
	})
	if len(sorted) > topTags {
		sorted = sorted[:topTags]
	}

	tags := make([]string, 0, len(sorted))
	for _, tc := range sorted {
		tags = append(tags, tc.tag)
	}
	return tags, nil
}

// ScoreTrack 重算单曲的内容相似度：有种子时取各种子下相似度的最大值，
// 否则按推导出的用户 tag 算重合度。与全量检索的打分公式一致。
func (s *ContentScorer) ScoreTrack(
	ctx context.Context,
	rctx *core.RecommendContext,
	trackID string,
) (float64, error) {
	if s.Port == nil || rctx == nil {
		return 0, core.ErrStrategyUnavailable
	}

	t, err := s.Port.GetTrack(ctx, trackID)
	if err != nil {
		return 0, core.StrategyUnavailable(err)
	}

	if len(rctx.SeedTrackIDs) > 0 {
		var best float64
		var lastErr error
		for _, seedID := range rctx.SeedTrackIDs {
			if seedID == trackID {
				continue
			}
			seed, err := s.Port.GetTrack(ctx, seedID)
			if err != nil {
				lastErr = err
				continue
			}
			score := core.TrackSimilarity(s.seedQuery(seed, rctx.SeedTrackIDs, 0), t)
			if score > best {
				best = score
			}
		}
		if best == 0 && lastErr != nil {
			return 0, core.StrategyUnavailable(lastErr)
		}
		return best, nil
	}

	if rctx.UserID != "" {
		tags, err := s.userTags(ctx, rctx.UserID)
		if err != nil {
			return 0, core.StrategyUnavailable(err)
		}
		return core.TrackSimilarity(core.SimilarityQuery{Tags: tags}, t), nil
	}

	return 0, core.ErrStrategyUnavailable
}

var _ Scorer = (*ContentScorer)(nil)
