// Package dsl 提供基于 CEL (Common Expression Language) 的规则解释器，
// 用于以配置下发的业务规则过滤融合结果。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/tunekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

// getCELEnv 获取或创建 CEL 环境，定义可用变量。
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("track", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的规则程序。编译一次，多次求值；cel.Program 线程安全。
//
// 表达式语法（CEL 标准语法）示例：
//   - track.popularity < 0.95            → 剔除头部过热曲目
//   - track.mood == "sad"                → 剔除指定情绪
//   - "explicit" in track.tags           → 按 tag 剔除
//   - track.audio.energy > 0.9 && rctx.mood == "relaxed"
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译规则表达式。表达式必须返回布尔值。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}

	return &Program{expr: expr, prg: prg}, nil
}

// Expr 返回原始表达式文本。
func (p *Program) Expr() string { return p.expr }

// Evaluate 对 (track, rctx) 求值，返回布尔结果。
// 访问不存在的 key 会报错；用 != null 检查存在性。
func (p *Program) Evaluate(track *core.Track, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(track, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 求值的输入数据。
func buildInput(track *core.Track, rctx *core.RecommendContext) map[string]any {
	t := map[string]any{}
	if track != nil {
		tags := make([]any, 0, len(track.Tags))
		for _, tag := range track.Tags {
			tags = append(tags, tag)
		}
		t = map[string]any{
			"id":             track.ID,
			"title":          track.Title,
			"artist":         track.Artist,
			"album":          track.Album,
			"genre":          track.Genre,
			"tags":           tags,
			"mood":           string(track.Mood),
			"popularity":     track.Popularity,
			"view_count":     track.ViewCount,
			"reaction_count": track.ReactionCount,
			"comment_count":  track.CommentCount,
			"audio": map[string]any{
				"danceability":     track.Audio.Danceability,
				"energy":           track.Audio.Energy,
				"valence":          track.Audio.Valence,
				"tempo":            track.Audio.Tempo,
				"acousticness":     track.Audio.Acousticness,
				"instrumentalness": track.Audio.Instrumentalness,
				"liveness":         track.Audio.Liveness,
				"speechiness":      track.Audio.Speechiness,
				"loudness":         track.Audio.Loudness,
			},
		}
	}

	r := map[string]any{}
	if rctx != nil {
		seeds := make([]any, 0, len(rctx.SeedTrackIDs))
		for _, id := range rctx.SeedTrackIDs {
			seeds = append(seeds, id)
		}
		r = map[string]any{
			"user_id":        rctx.UserID,
			"seed_track_ids": seeds,
			"limit":          rctx.Limit,
			"mood":           string(rctx.Mood),
		}
	}

	return map[string]any{
		"track": t,
		"rctx":  r,
	}
}
