package filter

import (
	"context"

	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/pkg/dsl"
)

// RuleFilter 按 CEL 业务规则剔除曲目：任一规则命中（求值为 true）
// 即剔除。规则在构造时编译一次，求值线程安全。
//
// 示例：
//
//	f, err := filter.NewRuleFilter([]string{
//	    `"explicit" in track.tags`,
//	    `track.popularity > 0.98`,
//	})
type RuleFilter struct {
	programs []*dsl.Program
}

// NewRuleFilter 编译一组规则表达式；任一表达式非法时整体失败。
func NewRuleFilter(exprs []string) (*RuleFilter, error) {
	programs := make([]*dsl.Program, 0, len(exprs))
	for _, expr := range exprs {
		if expr == "" {
			continue
		}
		prg, err := dsl.Compile(expr)
		if err != nil {
			return nil, err
		}
		programs = append(programs, prg)
	}
	return &RuleFilter{programs: programs}, nil
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	track *core.Track,
) (bool, error) {
	if track == nil {
		return true, nil
	}
	for _, prg := range f.programs {
		hit, err := prg.Evaluate(track, rctx)
		if err != nil {
			// 规则求值失败不应吞掉结果，保留曲目并上抛错误由引擎记日志
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

var _ Filter = (*RuleFilter)(nil)
