package core

import (
	"context"
	"time"
)

// Interaction 是一条用户-曲目交互记录（播放）。
type Interaction struct {
	TrackID   string
	PlayCount int
	Timestamp time.Time
}

// Neighbor 是与目标用户有交集的候选相似用户。
// OverlapScore 是共同交互曲目数（或存储侧的等价度量），仅用于粗筛，
// 精确的余弦相似度由协同策略在端口之上计算。
type Neighbor struct {
	UserID       string
	OverlapScore float64
}

// SimilarityQuery 是内容相似检索的查询参数。
// Features / Tags / Mood 均可缺省；打分语义由 TrackSimilarity 统一定义，
// 所有端口实现必须与之一致。
type SimilarityQuery struct {
	// Features 是种子的核心音频特征（高斯核的中心点），可为 nil。
	Features map[string]float64

	// Tags 命中任意 tag 加性加分。
	Tags []string

	// Mood 非空时限定/加分情绪匹配。
	Mood Mood

	// ExcludeIDs 从结果中剔除的曲目（通常是种子自身）。
	ExcludeIDs []string

	// OnlyMood 为 true 时仅返回情绪完全匹配的曲目（MoodScorer 使用）。
	OnlyMood bool

	Limit int
}

// RetrievalPort 是融合引擎对外部文档存储的唯一依赖。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 对融合引擎只读；并发读安全由实现方保证
//   - 引擎内不做重试，重试（若有）属于端口实现的职责
type RetrievalPort interface {
	// GetTrack 按 ID 读取曲目；不存在时返回 ErrTrackNotFound。
	GetTrack(ctx context.Context, id string) (*Track, error)

	// GetUserProfile 读取用户画像；不存在时返回 ErrUserNotFound。
	GetUserProfile(ctx context.Context, id string) (*UserProfile, error)

	// QueryBySimilarity 按 TrackSimilarity 语义返回打分后的候选，
	// 降序排列，最多 Limit 条。
	QueryBySimilarity(ctx context.Context, q SimilarityQuery) ([]Candidate, error)

	// QueryUserInteractions 返回用户最近的交互记录，按时间降序，
	// 最多 limit 条。
	QueryUserInteractions(ctx context.Context, userID string, limit int) ([]Interaction, error)

	// QueryNeighborInteractions 返回与给定曲目集合有交互、且不是
	// excludeUserID 的用户，按交集大小降序，最多 topK 个。
	QueryNeighborInteractions(ctx context.Context, trackIDs []string, excludeUserID string, topK int) ([]Neighbor, error)

	// GetComments 返回曲目的评论原文，供情感分析使用。
	GetComments(ctx context.Context, trackID string) ([]string, error)

	// ListTracks 按 ID 升序返回曲目全量扫描的前 limit 条，
	// 作为热度策略的打分基数。
	ListTracks(ctx context.Context, limit int) ([]*Track, error)
}
