package fusion

import "github.com/rushteam/tunekit/core"

// DefaultWeights 是零活跃度（冷启动）用户的固定权重。
// 情绪分量默认为 0：只有当请求存在情绪信号时才激活。
func DefaultWeights() core.WeightVector {
	return core.WeightVector{
		Content:       0.4,
		Collaborative: 0.3,
		Popularity:    0.3,
		Mood:          0,
	}
}

// WeightCalculator 根据用户活跃度信号推导本次请求的策略权重。
//
// 公式（total = 收藏 + 歌单 + 互动 > 0 时）：
//
//	content       = 0.4 + (收藏+歌单)/(2·total)
//	collaborative = 0.3 + 互动/total
//	popularity    = 1 − content − collaborative
//
// 之后逐分量钳到 ≥0 并归一化到总和 1。直觉：重策展用户（收藏/歌单多）
// 偏内容权重，重互动用户偏协同权重。
//
// Compute 是纯函数：相同画像输入必得相同输出，无副作用；权重每次
// 请求现算，不跨请求缓存。
type WeightCalculator struct {
	// MoodShare 是情绪信号存在时切给情绪策略的固定份额，默认 0.1；
	// 其余三个分量按 (1−MoodShare) 等比缩放，总和仍为 1。
	MoodShare float64
}

func (c *WeightCalculator) moodShare() float64 {
	if c == nil || c.MoodShare <= 0 || c.MoodShare >= 1 {
		return 0.1
	}
	return c.MoodShare
}

// Compute 计算权重向量。profile 为 nil 或零活跃度时返回默认权重，
// moodActive 指示本次请求是否存在情绪信号（显式指定或可推断）。
func (c *WeightCalculator) Compute(profile *core.UserProfile, moodActive bool) core.WeightVector {
	w := DefaultWeights()

	if total := profile.TotalActivity(); total > 0 {
		curation := float64(profile.CurationCount())
		reactions := float64(profile.ReactionCount)
		ftotal := float64(total)

		w.Content = 0.4 + curation/(2*ftotal)
		w.Collaborative = 0.3 + reactions/ftotal
		w.Popularity = 1.0 - w.Content - w.Collaborative
		w.Mood = 0

		w = w.Clamp().Normalize()
	}

	if moodActive {
		share := c.moodShare()
		w.Content *= 1 - share
		w.Collaborative *= 1 - share
		w.Popularity *= 1 - share
		w.Mood = share
	}

	return w
}
