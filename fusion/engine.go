package fusion

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/filter"
	"github.com/rushteam/tunekit/strategy"
)

// Request 是一次推荐请求。UserID 与 SeedTrackIDs 至少提供其一。
type Request struct {
	UserID       string
	SeedTrackIDs []string

	// Limit 是返回条数，默认 10。
	Limit int

	// Mood 可选的显式情绪。
	Mood core.Mood

	// RandSeed 驱动情绪策略的随机扰动；0 表示每次请求取新种子。
	RandSeed int64
}

// Recommendation 是推荐结果：排好序的列表 + 显式成败状态。
// Status 让调用方区分"没有可推荐内容"（EMPTY）与降级（PARTIAL）。
type Recommendation struct {
	Results []core.RankedResult
	Status  core.Status
}

// Engine 是融合引擎：并发分发四个策略，按请求级权重加性合并，
// 去重、定序、截断。引擎本身无状态，单实例可安全服务并发请求。
type Engine struct {
	Port core.RetrievalPort

	// Scorers 是参与融合的策略集合；NewEngine 默认装配四个标准策略。
	Scorers []strategy.Scorer

	// Calc 为 nil 时使用零值计算器（MoodShare 0.1）。
	Calc *WeightCalculator

	// Filters 在截断前逐条应用于融合结果，可为空。
	Filters []filter.Filter

	// StrategyTimeout 是单个策略的执行上限，默认 3s；超时按降级处理。
	StrategyTimeout time.Duration

	// Logger 记录策略降级与过滤异常；默认 Nop。
	Logger zerolog.Logger
}

// NewEngine 用默认策略装配一个引擎。
func NewEngine(port core.RetrievalPort) *Engine {
	return &Engine{
		Port: port,
		Scorers: []strategy.Scorer{
			&strategy.ContentScorer{Port: port},
			&strategy.CollaborativeScorer{Port: port},
			&strategy.PopularityScorer{Port: port},
			&strategy.MoodScorer{Port: port},
		},
		Logger: zerolog.Nop(),
	}
}

func (e *Engine) calc() *WeightCalculator {
	if e.Calc != nil {
		return e.Calc
	}
	return &WeightCalculator{}
}

func (e *Engine) timeout() time.Duration {
	if e.StrategyTimeout > 0 {
		return e.StrategyTimeout
	}
	return 3 * time.Second
}

// Recommend 生成 Top-N 推荐。
//
// 错误语义（见 core/errors.go）：
//   - 无 userID 且无种子 → ErrInvalidRequest，不分发任何策略
//   - 单个策略失败/超时/无数据 → 降级为空候选并记日志，状态置 PARTIAL
//   - 全部为空 → 热度兜底；兜底也为空 → 状态 EMPTY + 空列表，不报错
//   - 调用方取消 → 透传 ctx 错误，丢弃部分结果
func (e *Engine) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	rctx := e.buildContext(req)
	if !rctx.Valid() {
		return nil, core.ErrInvalidRequest
	}

	e.loadProfile(ctx, rctx)
	weights := e.weightsFor(rctx)

	lists, degraded := e.dispatch(ctx, rctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := fuseAll(lists, weights)
	if len(ranked) == 0 {
		ranked = e.popularityFallback(ctx, rctx)
		degraded = true
	}

	ranked = e.applyFilters(ctx, rctx, ranked)
	ranked = truncateRanked(ranked, rctx.Limit)

	status := core.StatusOK
	if degraded {
		status = core.StatusPartial
	}
	if len(ranked) == 0 {
		status = core.StatusEmpty
	}
	return &Recommendation{Results: ranked, Status: status}, nil
}

func (e *Engine) buildContext(req Request) *core.RecommendContext {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	seed := req.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &core.RecommendContext{
		UserID:       req.UserID,
		SeedTrackIDs: req.SeedTrackIDs,
		Limit:        limit,
		Mood:         req.Mood,
		RandSeed:     seed,
	}
}

// loadProfile 加载用户画像；画像缺失或读取失败按冷启动处理，不中断请求。
func (e *Engine) loadProfile(ctx context.Context, rctx *core.RecommendContext) {
	if rctx.UserID == "" || e.Port == nil {
		return
	}
	profile, err := e.Port.GetUserProfile(ctx, rctx.UserID)
	switch {
	case err == nil:
		rctx.User = profile
	case core.IsNotFound(err):
		// 新用户：无画像即冷启动
	default:
		e.Logger.Warn().Err(err).Str("user_id", rctx.UserID).
			Msg("load profile failed, treating as cold start")
	}
}

// weightsFor 计算本次请求的权重。情绪信号的判定与解释器共用同一规则：
// 显式指定情绪，或用户有活跃度可供推断。
func (e *Engine) weightsFor(rctx *core.RecommendContext) core.WeightVector {
	moodActive := rctx.Mood != "" || (rctx.User != nil && rctx.User.TotalActivity() > 0)
	return e.calc().Compute(rctx.User, moodActive)
}

// dispatch 并发执行全部策略，带每策略超时；任何失败都降级为空候选。
func (e *Engine) dispatch(
	ctx context.Context,
	rctx *core.RecommendContext,
) (map[core.StrategyKind][]core.Candidate, bool) {
	var (
		mu       sync.Mutex
		lists    = make(map[core.StrategyKind][]core.Candidate, len(e.Scorers))
		degraded bool
	)

	eg, egctx := errgroup.WithContext(ctx)
	for _, sc := range e.Scorers {
		sc := sc
		eg.Go(func() error {
			sctx, cancel := context.WithTimeout(egctx, e.timeout())
			defer cancel()

			cands, err := sc.Score(sctx, rctx)
			if err != nil {
				// 超时与检索失败同样走降级，不中断其他策略
				e.Logger.Warn().Str("strategy", sc.Name()).Err(err).
					Msg("strategy degraded")
				mu.Lock()
				degraded = true
				mu.Unlock()
				return nil
			}

			mu.Lock()
			lists[sc.Kind()] = cands
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait() // goroutine 从不返回 error

	return lists, degraded
}

// popularityFallback 在全策略皆空时单独执行热度策略，原始分直接作为
// 融合分。热度兜底也失败时返回空（调用方拿到 EMPTY 状态）。
func (e *Engine) popularityFallback(
	ctx context.Context,
	rctx *core.RecommendContext,
) []core.RankedResult {
	for _, sc := range e.Scorers {
		if sc.Kind() != core.StrategyPopularity {
			continue
		}
		cands, err := sc.Score(ctx, rctx)
		if err != nil {
			e.Logger.Warn().Str("strategy", sc.Name()).Err(err).
				Msg("popularity fallback unavailable")
			return nil
		}
		out := make([]core.RankedResult, 0, len(cands))
		for i, c := range cands {
			out = append(out, core.RankedResult{
				TrackID:    c.TrackID,
				FusedScore: c.RawScore,
				Rank:       i + 1,
			})
		}
		return out
	}
	return nil
}

// applyFilters 在截断前应用过滤器；无过滤器时不做任何曲目读取。
func (e *Engine) applyFilters(
	ctx context.Context,
	rctx *core.RecommendContext,
	ranked []core.RankedResult,
) []core.RankedResult {
	if len(e.Filters) == 0 || len(ranked) == 0 {
		return ranked
	}

	out := make([]core.RankedResult, 0, len(ranked))
	for _, r := range ranked {
		track, err := e.Port.GetTrack(ctx, r.TrackID)
		if err != nil {
			// 结果里的曲目读不到，保守丢弃
			e.Logger.Warn().Err(err).Str("track_id", r.TrackID).
				Msg("drop unresolvable result")
			continue
		}

		drop := false
		for _, f := range e.Filters {
			hit, err := f.ShouldFilter(ctx, rctx, track)
			if err != nil {
				e.Logger.Warn().Str("filter", f.Name()).Err(err).
					Msg("filter evaluation failed, keeping track")
				continue
			}
			if hit {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, r)
		}
	}
	return out
}

// Fuse 按权重加性融合多路候选：fused[id] += weight[source] × rawScore。
//
// 同一曲目出现在多个策略下时贡献累加（而非取均值/最大值），
// 多信号共同命中排在单信号强命中之前。结果按融合分降序、
// 同分按曲目 ID 升序（字典序）排列并截断到 limit，
// 与输入 map 的遍历顺序无关。
func Fuse(
	lists map[core.StrategyKind][]core.Candidate,
	weights core.WeightVector,
	limit int,
) []core.RankedResult {
	return truncateRanked(fuseAll(lists, weights), limit)
}

func fuseAll(
	lists map[core.StrategyKind][]core.Candidate,
	weights core.WeightVector,
) []core.RankedResult {
	scores := make(map[string]float64)
	for kind, cands := range lists {
		w := weights.Of(kind)
		for _, c := range cands {
			scores[c.TrackID] += w * c.RawScore
		}
	}

	out := make([]core.RankedResult, 0, len(scores))
	for id, s := range scores {
		out = append(out, core.RankedResult{TrackID: id, FusedScore: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FusedScore != out[j].FusedScore {
			return out[i].FusedScore > out[j].FusedScore
		}
		return out[i].TrackID < out[j].TrackID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func truncateRanked(ranked []core.RankedResult, limit int) []core.RankedResult {
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
