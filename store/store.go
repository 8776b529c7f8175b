// Package store 提供 core.RetrievalPort 的基础设施实现。
//
// 注意：端口接口定义在 core 包（领域层定义接口，基础设施层实现接口，
// 避免循环依赖）。本包提供两个实现：
//
//	MemoryStore — 内存实现，用于测试/开发/原型
//	RedisStore  — Redis 实现，生产环境常用
//
// 两个实现的相似检索打分都必须走 core.TrackSimilarity，保证内容策略
// 在任何后端下语义一致。
package store
