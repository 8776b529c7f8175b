// Package feature 提供音频特征在线补全能力。
//
// 曲目的主存储（store 包）可能只有元数据，音频特征（valence/energy 等）
// 由离线特征管线产出并写入 Feast 在线特征库。本包封装 Feast 客户端，
// 并以装饰器方式在检索端口之上补全缺失特征。
package feature

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/tunekit/core"
)

// Client 按曲目 ID 批量获取音频特征。
// 缺失的曲目不出现在返回 map 中，不视为错误。
type Client interface {
	GetAudioFeatures(ctx context.Context, trackIDs []string) (map[string]core.AudioFeatures, error)
	Close() error
}

// 在线特征库中的特征引用，格式为 feature_table:feature。
var audioFeatureRefs = []string{
	"track_audio:acousticness",
	"track_audio:danceability",
	"track_audio:energy",
	"track_audio:instrumentalness",
	"track_audio:valence",
	"track_audio:liveness",
	"track_audio:loudness",
	"track_audio:speechiness",
	"track_audio:tempo",
}

// FeastClient 是基于 Feast gRPC 在线服务的 Client 实现。
type FeastClient struct {
	client  *feastsdk.GrpcClient
	project string
}

var _ Client = (*FeastClient)(nil)

// NewFeastClient 连接 Feast Serving 服务。
func NewFeastClient(host string, port int, project string) (*FeastClient, error) {
	cli, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast: connect %s:%d: %w", host, port, err)
	}
	return &FeastClient{client: cli, project: project}, nil
}

func (c *FeastClient) GetAudioFeatures(ctx context.Context, trackIDs []string) (map[string]core.AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return map[string]core.AudioFeatures{}, nil
	}

	entities := make([]feastsdk.Row, 0, len(trackIDs))
	for _, id := range trackIDs {
		entities = append(entities, feastsdk.Row{"track_id": feastsdk.StrVal(id)})
	}

	resp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: audioFeatureRefs,
		Entities: entities,
		Project:  c.project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := resp.Rows()
	out := make(map[string]core.AudioFeatures, len(rows))
	for i, row := range rows {
		if i >= len(trackIDs) {
			break
		}
		af, ok := rowToFeatures(row)
		if ok {
			out[trackIDs[i]] = af
		}
	}
	return out, nil
}

// rowToFeatures 将一行特征值转为 AudioFeatures。
// 任一核心特征缺失时视为整行缺失（半套特征会扭曲高斯相似度）。
func rowToFeatures(row feastsdk.Row) (core.AudioFeatures, bool) {
	get := func(name string) (float64, bool) {
		v, ok := row["track_audio:"+name]
		if !ok || v == nil {
			return 0, false
		}
		return v.GetDoubleVal(), true
	}

	var af core.AudioFeatures
	var ok bool
	if af.Danceability, ok = get("danceability"); !ok {
		return core.AudioFeatures{}, false
	}
	if af.Energy, ok = get("energy"); !ok {
		return core.AudioFeatures{}, false
	}
	if af.Valence, ok = get("valence"); !ok {
		return core.AudioFeatures{}, false
	}
	if af.Tempo, ok = get("tempo"); !ok {
		return core.AudioFeatures{}, false
	}
	if af.Acousticness, ok = get("acousticness"); !ok {
		return core.AudioFeatures{}, false
	}
	// 非核心特征缺失不影响相似度计算，尽力填充。
	af.Instrumentalness, _ = get("instrumentalness")
	af.Liveness, _ = get("liveness")
	af.Loudness, _ = get("loudness")
	af.Speechiness, _ = get("speechiness")
	return af, true
}

func (c *FeastClient) Close() error {
	return c.client.Close()
}
