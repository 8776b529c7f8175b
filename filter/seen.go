package filter

import (
	"context"

	"github.com/rushteam/tunekit/core"
)

// SeenFilter 剔除用户已经收藏的曲目（推荐已收藏内容没有价值）。
// 画像缺失时不剔除任何内容。
type SeenFilter struct {
	// ExtraIDs 是额外的静态排除列表（运营黑名单等），可为空。
	ExtraIDs []string
}

func (f *SeenFilter) Name() string { return "filter.seen" }

func (f *SeenFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	track *core.Track,
) (bool, error) {
	if track == nil {
		return true, nil
	}

	for _, id := range f.ExtraIDs {
		if track.ID == id {
			return true, nil
		}
	}

	if rctx != nil && rctx.User != nil {
		return rctx.User.HasFavorite(track.ID), nil
	}
	return false, nil
}

var _ Filter = (*SeenFilter)(nil)
