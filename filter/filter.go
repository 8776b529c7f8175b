package filter

import (
	"context"

	"github.com/rushteam/tunekit/core"
)

// Filter 是过滤器的抽象接口，用于判断一个曲目是否应从融合结果中剔除。
// 返回 true 表示剔除，false 表示保留。融合引擎在截断前逐条应用。
type Filter interface {
	// Name 返回过滤器名称（用于日志）
	Name() string

	// ShouldFilter 判断曲目是否应被剔除
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, track *core.Track) (bool, error)
}
