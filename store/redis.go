package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/tunekit/core"
)

// Redis 键布局：
//
//	track:{id}            STRING  曲目 JSON
//	track:{id}:comments   LIST    评论文本
//	track:{id}:listeners  SET     播放过该曲目的用户 ID
//	user:{id}             STRING  用户画像 JSON
//	inter:{userID}        LIST    播放记录 JSON，LPush 保证新的在前
//	tracks:by_id          ZSET    全量曲目 ID，score 固定为 0（按字典序遍历）
//	idx:mood:{mood}       SET     情绪倒排索引
//	idx:tag:{tag}         SET     标签倒排索引
const (
	keyTrack     = "track:%s"
	keyComments  = "track:%s:comments"
	keyListeners = "track:%s:listeners"
	keyUser      = "user:%s"
	keyInter     = "inter:%s"
	keyAllTracks = "tracks:by_id"
	keyMoodIdx   = "idx:mood:%s"
	keyTagIdx    = "idx:tag:%s"
)

// RedisStore 是 Redis 实现的 core.RetrievalPort。
// 相似检索先通过情绪/标签倒排索引缩小候选池，再按 core.TrackSimilarity
// 精排，保证与 MemoryStore 打分语义一致。
type RedisStore struct {
	client *redis.Client
	// ScanLimit 限制一次相似检索加载的候选曲目数，0 使用 defaultScanLimit。
	ScanLimit int
}

var _ core.RetrievalPort = (*RedisStore)(nil)

const defaultScanLimit = 1000

// NewRedisStore 连接 Redis 并返回检索端口实现。
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	return &RedisStore{client: client}, nil
}

// IndexTrack 写入曲目并维护倒排索引。
func (r *RedisStore) IndexTrack(ctx context.Context, t *core.Track) error {
	if t == nil || t.ID == "" {
		return core.ErrInvalidRequest
	}
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(keyTrack, t.ID), data, 0)
	pipe.ZAdd(ctx, keyAllTracks, redis.Z{Score: 0, Member: t.ID})
	if t.Mood != "" {
		pipe.SAdd(ctx, fmt.Sprintf(keyMoodIdx, t.Mood), t.ID)
	}
	for _, tag := range t.Tags {
		pipe.SAdd(ctx, fmt.Sprintf(keyTagIdx, tag), t.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// SetUserProfile 写入用户画像。
func (r *RedisStore) SetUserProfile(ctx context.Context, p *core.UserProfile) error {
	if p == nil || p.UserID == "" {
		return core.ErrInvalidRequest
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, fmt.Sprintf(keyUser, p.UserID), data, 0).Err()
}

// AddInteraction 记录播放行为并维护听众集合。
func (r *RedisStore) AddInteraction(ctx context.Context, userID string, in core.Interaction) error {
	if userID == "" || in.TrackID == "" {
		return core.ErrInvalidRequest
	}
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.LPush(ctx, fmt.Sprintf(keyInter, userID), data)
	pipe.SAdd(ctx, fmt.Sprintf(keyListeners, in.TrackID), userID)
	_, err = pipe.Exec(ctx)
	return err
}

// AddComment 追加评论。
func (r *RedisStore) AddComment(ctx context.Context, trackID, comment string) error {
	if trackID == "" || comment == "" {
		return core.ErrInvalidRequest
	}
	return r.client.RPush(ctx, fmt.Sprintf(keyComments, trackID), comment).Err()
}

func (r *RedisStore) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(keyTrack, trackID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrTrackNotFound
	}
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	var t core.Track
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	return &t, nil
}

func (r *RedisStore) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	data, err := r.client.Get(ctx, fmt.Sprintf(keyUser, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	var p core.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	return &p, nil
}

// QueryBySimilarity 经倒排索引取候选池，逐条加载后按
// core.TrackSimilarity 精排打分。
func (r *RedisStore) QueryBySimilarity(ctx context.Context, q core.SimilarityQuery) ([]core.Candidate, error) {
	ids, err := r.candidatePool(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]core.Candidate, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetTrack(ctx, id)
		if core.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !core.MatchesQuery(q, t) {
			continue
		}
		score := core.TrackSimilarity(q, t)
		if score <= 0 {
			continue
		}
		out = append(out, core.Candidate{
			TrackID:  id,
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

// candidatePool 优先用情绪/标签索引并集缩池；无索引可用时回退全量遍历。
func (r *RedisStore) candidatePool(ctx context.Context, q core.SimilarityQuery) ([]string, error) {
	scan := r.ScanLimit
	if scan <= 0 {
		scan = defaultScanLimit
	}

	var idxKeys []string
	if q.Mood != "" {
		idxKeys = append(idxKeys, fmt.Sprintf(keyMoodIdx, q.Mood))
	}
	if !q.OnlyMood {
		for _, tag := range q.Tags {
			idxKeys = append(idxKeys, fmt.Sprintf(keyTagIdx, tag))
		}
	}

	var ids []string
	var err error
	if len(idxKeys) > 0 {
		ids, err = r.client.SUnion(ctx, idxKeys...).Result()
	} else {
		ids, err = r.client.ZRange(ctx, keyAllTracks, 0, int64(scan)-1).Result()
	}
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	sort.Strings(ids)
	if len(ids) > scan {
		ids = ids[:scan]
	}
	return ids, nil
}

func (r *RedisStore) QueryUserInteractions(ctx context.Context, userID string, limit int) ([]core.Interaction, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raws, err := r.client.LRange(ctx, fmt.Sprintf(keyInter, userID), 0, stop).Result()
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	out := make([]core.Interaction, 0, len(raws))
	for _, raw := range raws {
		var in core.Interaction
		if err := json.Unmarshal([]byte(raw), &in); err != nil {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// QueryNeighborInteractions 用听众集合找邻居：对目标曲目逐一取
// listeners，统计每个用户命中的曲目数，降序返回前 topK 个。
func (r *RedisStore) QueryNeighborInteractions(ctx context.Context, trackIDs []string, excludeUserID string, topK int) ([]core.Neighbor, error) {
	overlapCount := make(map[string]int)
	for _, id := range trackIDs {
		users, err := r.client.SMembers(ctx, fmt.Sprintf(keyListeners, id)).Result()
		if err != nil {
			return nil, core.ErrRetrievalUnavailable.Wrap(err)
		}
		for _, u := range users {
			if u != excludeUserID {
				overlapCount[u]++
			}
		}
	}

	neighbors := make([]core.Neighbor, 0, len(overlapCount))
	for u, n := range overlapCount {
		neighbors = append(neighbors, core.Neighbor{UserID: u, OverlapScore: float64(n)})
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

func (r *RedisStore) GetComments(ctx context.Context, trackID string) ([]string, error) {
	cs, err := r.client.LRange(ctx, fmt.Sprintf(keyComments, trackID), 0, -1).Result()
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	return cs, nil
}

func (r *RedisStore) ListTracks(ctx context.Context, limit int) ([]*core.Track, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	ids, err := r.client.ZRange(ctx, keyAllTracks, 0, stop).Result()
	if err != nil {
		return nil, core.ErrRetrievalUnavailable.Wrap(err)
	}
	out := make([]*core.Track, 0, len(ids))
	for _, id := range ids {
		t, err := r.GetTrack(ctx, id)
		if core.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Close 关闭底层连接。
func (r *RedisStore) Close() error { return r.client.Close() }
