// Package tunekit 是一个音乐推荐融合工具包（Tune Kit）。
//
// 设计要点：
// - Strategy-first: 四路独立策略（内容相似 / 协同过滤 / 热度 / 情绪）并发打分，
//   按用户活跃度自适应加权后线性融合
// - Port-driven: 策略只依赖 core.RetrievalPort 检索契约，存储后端可插拔
//   （store 包内置内存与 Redis 实现）
// - Degrade-not-fail: 单策略失败 / 超时只降级不致命，融合结果标记 PARTIAL
package tunekit

import (
	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/fusion"
)

// 轻量 facade：便于用户直接 import "tunekit" 使用核心抽象。
type Engine = fusion.Engine
type Request = fusion.Request
type Recommendation = fusion.Recommendation
type RetrievalPort = core.RetrievalPort
type Track = core.Track

// NewEngine 用默认四策略装配融合引擎。
func NewEngine(port core.RetrievalPort) *Engine {
	return fusion.NewEngine(port)
}
