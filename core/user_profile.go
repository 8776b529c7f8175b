package core

// UserProfile 是权重计算消费的用户画像切片。
//
// 设计要点：
//   - 只保留自适应加权需要的活跃度信号（收藏 / 歌单 / 互动计数）
//   - 对融合引擎只读；画像的构建与更新属于检索存储侧
//   - 收藏集合同时被过滤阶段复用（不推荐用户已收藏的曲目）
type UserProfile struct {
	UserID string

	// Favorites 是用户收藏的曲目 ID 集合。
	Favorites map[string]struct{}

	// Playlists 是用户创建的歌单 ID 集合。
	Playlists map[string]struct{}

	// ReactionCount 是用户历史互动（点赞/评论等）总数。
	ReactionCount int
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		Favorites: make(map[string]struct{}),
		Playlists: make(map[string]struct{}),
	}
}

// CurationCount 返回策展类活跃度（收藏 + 歌单），偏内容权重的信号。
func (p *UserProfile) CurationCount() int {
	if p == nil {
		return 0
	}
	return len(p.Favorites) + len(p.Playlists)
}

// TotalActivity 返回总活跃度；为 0 表示冷启动用户。
func (p *UserProfile) TotalActivity() int {
	if p == nil {
		return 0
	}
	return p.CurationCount() + p.ReactionCount
}

// HasFavorite 判断曲目是否已被用户收藏。
func (p *UserProfile) HasFavorite(trackID string) bool {
	if p == nil || p.Favorites == nil {
		return false
	}
	_, ok := p.Favorites[trackID]
	return ok
}
