package core

import "math"

// 内容相似度的规范定义。公式收敛在本文件：端口的每个实现
// （memory / redis）都必须用同一公式打分，内容策略的契约才能
// 与存储实现解耦。

const (
	// GaussBandwidth 是径向基相似度的固定带宽（归一化单位）。
	GaussBandwidth = 0.2

	// MoodMatchBoost 是情绪完全匹配的加性加分。
	MoodMatchBoost = 1.0

	// TagMatchBoost 是 tag 重合度（[0,1]）的加性系数。
	TagMatchBoost = 1.0
)

// GaussianSimilarity 计算单维特征的高斯核相似度，中心为 origin，
// 带宽 GaussBandwidth。origin == value 时为 1，随距离平滑衰减。
func GaussianSimilarity(origin, value float64) float64 {
	d := origin - value
	return math.Exp(-(d * d) / (2 * GaussBandwidth * GaussBandwidth))
}

// TagOverlap 返回查询 tag 集与曲目 tag 的重合度 [0,1]。
// 查询集为空时为 0。
func TagOverlap(queryTags []string, t *Track) float64 {
	if len(queryTags) == 0 || t == nil {
		return 0
	}
	matched := 0
	for _, tag := range queryTags {
		if t.HasTag(tag) {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTags))
}

// TrackSimilarity 计算查询与曲目的相似度：
//
//	score = mean(gauss(feature_i))        // 5 个核心特征的径向基相似度
//	      + MoodMatchBoost · [mood 匹配]  // 加性
//	      + TagMatchBoost · tagOverlap    // 加性
//
// Features 为空时退化为纯 tag/mood 打分（无种子的 tag 回退路径）。
func TrackSimilarity(q SimilarityQuery, t *Track) float64 {
	if t == nil {
		return 0
	}

	var score float64

	if len(q.Features) > 0 {
		cand := t.Audio.Core()
		var sum float64
		var n int
		for name, origin := range q.Features {
			value, ok := cand[name]
			if !ok {
				continue
			}
			sum += GaussianSimilarity(origin, value)
			n++
		}
		if n > 0 {
			score += sum / float64(n)
		}
	}

	if q.Mood != "" && q.Mood == t.Mood {
		score += MoodMatchBoost
	}

	score += TagMatchBoost * TagOverlap(q.Tags, t)

	return score
}

// MatchesQuery 判断曲目是否进入相似检索的候选集：
// OnlyMood 模式下要求情绪完全一致，否则任一信号（特征/标签/情绪）
// 即可入围，排除列表优先。
func MatchesQuery(q SimilarityQuery, t *Track) bool {
	if t == nil {
		return false
	}
	for _, id := range q.ExcludeIDs {
		if t.ID == id {
			return false
		}
	}
	if q.OnlyMood {
		return q.Mood != "" && t.Mood == q.Mood
	}
	return true
}
