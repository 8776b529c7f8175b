package strategy

import (
	"context"
	"math"
	"time"

	"github.com/rushteam/tunekit/core"
)

// 热度打分的五个子信号权重，固定不随用户变化。
const (
	popWeightViews     = 0.3
	popWeightReactions = 0.2
	popWeightComments  = 0.2
	popWeightSentiment = 0.2
	popWeightRecency   = 0.1
)

// PopularityScorer 是基于互动热度的策略，全体用户共享同一份排序。
//
// 五个归一化子信号的加权和：
//   - 播放量 0.3、互动数 0.2、评论数 0.2
//   - 评论情感 0.2（1–5 缩放到 [0,1]；无评论按中性 0.5）
//   - 发行时效 0.1，对数衰减 1/(1+ln(1+days))；发行日期缺失按 0.5
//
// 同时承担全策略皆空时的兜底角色（由融合引擎调度）。
type PopularityScorer struct {
	Port core.RetrievalPort

	// Sentiment 为 nil 时使用内置词表分析器。
	Sentiment Analyzer

	// 子信号归一化上限；零值分别取 10000 / 1000 / 500。
	MaxViews     float64
	MaxReactions float64
	MaxComments  float64

	// ScanLimit 是全量扫描的条数上限，默认 1000。
	ScanLimit int

	// Now 供测试注入时钟，nil 时取 time.Now。
	Now func() time.Time
}

func (s *PopularityScorer) Name() string           { return "strategy.popularity" }
func (s *PopularityScorer) Kind() core.StrategyKind { return core.StrategyPopularity }

func (s *PopularityScorer) analyzer() Analyzer {
	if s.Sentiment != nil {
		return s.Sentiment
	}
	return LexiconAnalyzer{}
}

func (s *PopularityScorer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *PopularityScorer) caps() (views, reactions, comments float64) {
	views, reactions, comments = s.MaxViews, s.MaxReactions, s.MaxComments
	if views <= 0 {
		views = 10000
	}
	if reactions <= 0 {
		reactions = 1000
	}
	if comments <= 0 {
		comments = 500
	}
	return
}

func (s *PopularityScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]core.Candidate, error) {
	if s.Port == nil {
		return nil, core.ErrStrategyUnavailable
	}

	scanLimit := s.ScanLimit
	if scanLimit <= 0 {
		scanLimit = 1000
	}

	tracks, err := s.Port.ListTracks(ctx, scanLimit)
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(tracks) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	scores := make(map[string]float64, len(tracks))
	for _, t := range tracks {
		scores[t.ID] = s.trackScore(ctx, t)
	}

	limit := 20
	if rctx != nil {
		limit = rctx.StrategyLimit()
	}
	return topCandidates(scores, core.StrategyPopularity, limit), nil
}

// ScoreTrack 重算单曲热度分。
func (s *PopularityScorer) ScoreTrack(
	ctx context.Context,
	_ *core.RecommendContext,
	trackID string,
) (float64, error) {
	if s.Port == nil {
		return 0, core.ErrStrategyUnavailable
	}
	t, err := s.Port.GetTrack(ctx, trackID)
	if err != nil {
		return 0, core.StrategyUnavailable(err)
	}
	return s.trackScore(ctx, t), nil
}

// trackScore 计算五信号加权热度分，取值 [0,1]。
func (s *PopularityScorer) trackScore(ctx context.Context, t *core.Track) float64 {
	maxViews, maxReactions, maxComments := s.caps()

	views := math.Min(float64(t.ViewCount)/maxViews, 1.0)
	reactions := math.Min(float64(t.ReactionCount)/maxReactions, 1.0)
	comments := math.Min(float64(t.CommentCount)/maxComments, 1.0)

	sentiment := 0.5 // 无评论按中性
	if texts, err := s.Port.GetComments(ctx, t.ID); err == nil && len(texts) > 0 {
		stats := AnalyzeComments(s.analyzer(), texts)
		sentiment = NormalizeSentiment(stats.AverageSentiment)
	}

	recency := 0.5 // 发行日期缺失的默认衰减
	if !t.ReleaseDate.IsZero() {
		days := s.now().Sub(t.ReleaseDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		recency = 1.0 / (1.0 + math.Log1p(days))
	}

	return popWeightViews*views +
		popWeightReactions*reactions +
		popWeightComments*comments +
		popWeightSentiment*sentiment +
		popWeightRecency*recency
}

var _ Scorer = (*PopularityScorer)(nil)
