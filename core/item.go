package core

import "time"

// Mood 是曲目的情绪标签（固定枚举）。
// 由离线的数据管道根据音频特征打标，融合引擎只读不写。
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodRelaxed Mood = "relaxed"
	MoodIntense Mood = "intense"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// AudioFeatures 是归一化后的 9 维音频特征，所有分量取值 [0,1]。
// 前 5 个（Danceability/Energy/Valence/Tempo/Acousticness）是内容相似度
// 的核心特征，其余仅用于特征补全与画像推断。
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"` // 已归一化到 [0,1]，不是原始 BPM
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Loudness         float64 `json:"loudness"` // 已归一化到 [0,1]
}

// Core 返回参与内容相似度计算的 5 个核心特征。
// key 顺序无意义，调用方不应依赖遍历顺序。
func (f AudioFeatures) Core() map[string]float64 {
	return map[string]float64{
		"danceability": f.Danceability,
		"energy":       f.Energy,
		"valence":      f.Valence,
		"tempo":        f.Tempo,
		"acousticness": f.Acousticness,
	}
}

// Track 是曲目在推荐链路中的统一承载结构。
// 从融合引擎视角只读：文本特征、音频特征、情绪、互动计数均由
// 检索存储（RetrievalPort 背后的文档库）负责维护。
type Track struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Artist string   `json:"artist"`
	Album  string   `json:"album"`
	Genre  string   `json:"genre"`
	Tags   []string `json:"tags"`

	Audio AudioFeatures `json:"audio"`
	Mood  Mood          `json:"mood"`

	// Popularity 是互动导出的热度标量，取值 [0,1]。
	Popularity float64 `json:"popularity"`

	// 互动计数，用于热度打分的五个子信号中的前三个。
	ViewCount     int64 `json:"view_count"`
	ReactionCount int64 `json:"reaction_count"`
	CommentCount  int64 `json:"comment_count"`

	// ReleaseDate 为零值时表示发行日期未知，热度打分时按默认衰减处理。
	ReleaseDate time.Time `json:"release_date"`
}

// HasTag 判断曲目是否带有指定 tag。
func (t *Track) HasTag(tag string) bool {
	for _, v := range t.Tags {
		if v == tag {
			return true
		}
	}
	return false
}
