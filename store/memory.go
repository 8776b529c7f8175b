package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/tunekit/core"
)

// MemoryStore 是基于内存的 core.RetrievalPort 实现。
// 并发安全，适合测试、开发环境或小数据量的原型场景。
type MemoryStore struct {
	mu           sync.RWMutex
	tracks       map[string]*core.Track
	profiles     map[string]*core.UserProfile
	interactions map[string][]core.Interaction // userID -> interactions, 新的在前
	comments     map[string][]string           // trackID -> comments
}

var _ core.RetrievalPort = (*MemoryStore)(nil)

// NewMemoryStore 创建空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tracks:       make(map[string]*core.Track),
		profiles:     make(map[string]*core.UserProfile),
		interactions: make(map[string][]core.Interaction),
		comments:     make(map[string][]string),
	}
}

// AddTrack 写入或覆盖一条曲目。
func (s *MemoryStore) AddTrack(t *core.Track) {
	if t == nil || t.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tracks[t.ID] = &cp
}

// SetUserProfile 写入或覆盖用户画像。
func (s *MemoryStore) SetUserProfile(p *core.UserProfile) {
	if p == nil || p.UserID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

// AddInteraction 记录一次用户播放行为，新记录排在最前。
func (s *MemoryStore) AddInteraction(userID string, in core.Interaction) {
	if userID == "" || in.TrackID == "" {
		return
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions[userID] = append([]core.Interaction{in}, s.interactions[userID]...)
}

// AddComment 追加一条曲目评论。
func (s *MemoryStore) AddComment(trackID, comment string) {
	if trackID == "" || comment == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[trackID] = append(s.comments[trackID], comment)
}

// GetTrack 按 ID 查询曲目，未找到返回 core.ErrTrackNotFound。
func (s *MemoryStore) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[trackID]
	if !ok {
		return nil, core.ErrTrackNotFound
	}
	cp := *t
	return &cp, nil
}

// GetUserProfile 按 ID 查询用户画像，未找到返回 core.ErrUserNotFound。
func (s *MemoryStore) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return p, nil
}

// QueryBySimilarity 遍历全量曲目按 core.TrackSimilarity 打分，
// 得分降序、同分按 ID 升序，返回前 Limit 条。
func (s *MemoryStore) QueryBySimilarity(ctx context.Context, q core.SimilarityQuery) ([]core.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Candidate, 0, 64)
	for _, t := range s.tracks {
		if !core.MatchesQuery(q, t) {
			continue
		}
		score := core.TrackSimilarity(q, t)
		if score <= 0 {
			continue
		}
		out = append(out, core.Candidate{
			TrackID:  t.ID,
			RawScore: score,
			Source:   core.StrategyContent,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RawScore != out[j].RawScore {
			return out[i].RawScore > out[j].RawScore
		}
		return out[i].TrackID < out[j].TrackID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// QueryUserInteractions 返回用户播放记录，时间降序，最多 limit 条。
func (s *MemoryStore) QueryUserInteractions(ctx context.Context, userID string, limit int) ([]core.Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ins := s.interactions[userID]
	out := make([]core.Interaction, len(ins))
	copy(out, ins)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// QueryNeighborInteractions 找出与给定曲目集合有交互的其他用户，
// 按重合曲目数降序（同分按用户 ID 升序）返回前 topK 个邻居。
func (s *MemoryStore) QueryNeighborInteractions(ctx context.Context, trackIDs []string, excludeUserID string, topK int) ([]core.Neighbor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target := make(map[string]struct{}, len(trackIDs))
	for _, id := range trackIDs {
		target[id] = struct{}{}
	}

	var neighbors []core.Neighbor
	for uid, ins := range s.interactions {
		if uid == excludeUserID {
			continue
		}
		seen := make(map[string]struct{})
		for _, in := range ins {
			if _, ok := target[in.TrackID]; ok {
				seen[in.TrackID] = struct{}{}
			}
		}
		if len(seen) > 0 {
			neighbors = append(neighbors, core.Neighbor{UserID: uid, OverlapScore: float64(len(seen))})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].OverlapScore != neighbors[j].OverlapScore {
			return neighbors[i].OverlapScore > neighbors[j].OverlapScore
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	if topK > 0 && len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}
	return neighbors, nil
}

// GetComments 返回曲目评论，无评论返回空切片。
func (s *MemoryStore) GetComments(ctx context.Context, trackID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cs := s.comments[trackID]
	out := make([]string, len(cs))
	copy(out, cs)
	return out, nil
}

// ListTracks 按 ID 升序返回曲目，最多 limit 条。
func (s *MemoryStore) ListTracks(ctx context.Context, limit int) ([]*core.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tracks))
	for id := range s.tracks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]*core.Track, 0, len(ids))
	for _, id := range ids {
		cp := *s.tracks[id]
		out = append(out, &cp)
	}
	return out, nil
}
