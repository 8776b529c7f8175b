package strategy

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/tunekit/core"
)

// CollaborativeScorer 是基于用户的协同过滤策略（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的曲目"
//
// 算法流程：
//  1. 取目标用户的交互向量（曲目 → 播放次数）
//  2. 经端口粗筛出与目标用户至少共享一个交互曲目的候选用户
//  3. 对候选用户逐一计算播放向量的余弦相似度，保留 ≥ Threshold 的
//     前 TopKNeighbors 个
//  4. 聚合邻居交互过、目标用户没有的曲目，分值为按邻居相似度
//     加权的平均播放次数
type CollaborativeScorer struct {
	Port core.RetrievalPort

	// TopKNeighbors 是参与聚合的相似用户数，合法范围 10–20，默认 15。
	TopKNeighbors int

	// Threshold 是余弦相似度下限，默认 0.3。
	Threshold float64

	// HistoryLimit 是每个用户取的交互条数上限，默认 100。
	HistoryLimit int
}

func (s *CollaborativeScorer) Name() string           { return "strategy.collaborative" }
func (s *CollaborativeScorer) Kind() core.StrategyKind { return core.StrategyCollaborative }

func (s *CollaborativeScorer) topK() int {
	k := s.TopKNeighbors
	switch {
	case k <= 0:
		return 15
	case k < 10:
		return 10
	case k > 20:
		return 20
	}
	return k
}

func (s *CollaborativeScorer) threshold() float64 {
	if s.Threshold <= 0 {
		return 0.3
	}
	return s.Threshold
}

func (s *CollaborativeScorer) historyLimit() int {
	if s.HistoryLimit <= 0 {
		return 100
	}
	return s.HistoryLimit
}

func (s *CollaborativeScorer) Score(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]core.Candidate, error) {
	scores, err := s.neighborScores(ctx, rctx)
	if err != nil {
		return nil, err
	}
	return topCandidates(scores, core.StrategyCollaborative, rctx.StrategyLimit()), nil
}

// ScoreTrack 在与全量打分相同的邻居集合上，重算单曲的加权平均播放分。
// 该曲目没有被任何邻居交互时得分为 0（而非错误）。
func (s *CollaborativeScorer) ScoreTrack(
	ctx context.Context,
	rctx *core.RecommendContext,
	trackID string,
) (float64, error) {
	scores, err := s.neighborScores(ctx, rctx)
	if err != nil {
		return 0, err
	}
	return scores[trackID], nil
}

// neighborScores 执行完整的 User-CF 流程，返回候选曲目 → 分值表。
func (s *CollaborativeScorer) neighborScores(
	ctx context.Context,
	rctx *core.RecommendContext,
) (map[string]float64, error) {
	if s.Port == nil || rctx == nil || rctx.UserID == "" {
		return nil, core.ErrStrategyUnavailable
	}

	target, err := s.Port.QueryUserInteractions(ctx, rctx.UserID, s.historyLimit())
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(target) == 0 {
		// 冷启动：无交互历史
		return nil, core.ErrStrategyUnavailable
	}

	targetVec := playVector(target)
	trackIDs := make([]string, 0, len(targetVec))
	for id := range targetVec {
		trackIDs = append(trackIDs, id)
	}
	sort.Strings(trackIDs)

	topK := s.topK()

	// 粗筛：让端口多给一些候选，精确相似度在这里算
	neighbors, err := s.Port.QueryNeighborInteractions(ctx, trackIDs, rctx.UserID, topK*3)
	if err != nil {
		return nil, core.StrategyUnavailable(err)
	}
	if len(neighbors) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	type scoredNeighbor struct {
		userID string
		sim    float64
		vec    map[string]float64
	}
	scored := make([]scoredNeighbor, 0, len(neighbors))

	for _, nb := range neighbors {
		inters, err := s.Port.QueryUserInteractions(ctx, nb.UserID, s.historyLimit())
		if err != nil || len(inters) == 0 {
			continue
		}
		vec := playVector(inters)
		sim := cosineSimilarity(targetVec, vec)
		if sim >= s.threshold() {
			scored = append(scored, scoredNeighbor{userID: nb.UserID, sim: sim, vec: vec})
		}
	}

	if len(scored) == 0 {
		return nil, core.ErrStrategyUnavailable
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].sim != scored[j].sim {
			return scored[i].sim > scored[j].sim
		}
		return scored[i].userID < scored[j].userID
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}

	// 加权平均：score[t] = Σ(sim·playCount) / Σ(sim)，目标已交互的曲目除外
	num := make(map[string]float64)
	den := make(map[string]float64)
	for _, nb := range scored {
		for trackID, plays := range nb.vec {
			if _, seen := targetVec[trackID]; seen {
				continue
			}
			num[trackID] += nb.sim * plays
			den[trackID] += nb.sim
		}
	}

	out := make(map[string]float64, len(num))
	for trackID, n := range num {
		if d := den[trackID]; d > 0 {
			out[trackID] = n / d
		}
	}
	return out, nil
}

// playVector 把交互记录折叠为稀疏播放向量（同曲目累加）。
func playVector(inters []core.Interaction) map[string]float64 {
	vec := make(map[string]float64, len(inters))
	for _, in := range inters {
		plays := float64(in.PlayCount)
		if plays <= 0 {
			plays = 1
		}
		vec[in.TrackID] += plays
	}
	return vec
}

// cosineSimilarity 计算两个稀疏向量的余弦相似度。
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Scorer = (*CollaborativeScorer)(nil)
