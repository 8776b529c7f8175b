package core

// RecommendContext 承载一次推荐请求的全部输入，贯穿四个策略透传。
// 所有字段在请求开始时确定，请求内不再修改（无状态是设计不变量，
// 保证并发请求互不干扰）。
type RecommendContext struct {
	// UserID 可选；与 SeedTrackIDs 至少提供其一，否则为 InvalidRequest。
	UserID string

	// SeedTrackIDs 可选的种子曲目，内容策略优先使用。
	SeedTrackIDs []string

	// Limit 是最终返回的候选数；策略内部会放大到 2×Limit 给融合留余量。
	Limit int

	// Mood 可选的显式情绪；为空时由 MoodScorer 从近期收听推断。
	Mood Mood

	// User 是已加载的用户画像；引擎在分发策略前填充，策略只读。
	User *UserProfile

	// RandSeed 驱动 MoodScorer 的随机扰动。每次请求应使用新的种子；
	// 测试中固定种子即可获得确定性输出。
	RandSeed int64
}

// StrategyLimit 返回策略应产出的候选数上限（2×Limit，带下限保护）。
func (rctx *RecommendContext) StrategyLimit() int {
	if rctx == nil || rctx.Limit <= 0 {
		return 20
	}
	return rctx.Limit * 2
}

// Valid 校验请求是否满足最低输入要求：userID 与种子至少其一。
func (rctx *RecommendContext) Valid() bool {
	if rctx == nil {
		return false
	}
	return rctx.UserID != "" || len(rctx.SeedTrackIDs) > 0
}
