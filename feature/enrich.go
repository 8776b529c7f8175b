package feature

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/tunekit/core"
)

// EnrichedPort 装饰一个 core.RetrievalPort，在曲目缺少音频特征
// （全零值）时从在线特征库补全。特征库故障只记日志不阻断检索，
// 调用方拿到未补全的曲目继续走流程。
type EnrichedPort struct {
	core.RetrievalPort
	Features Client
	Logger   zerolog.Logger
}

var _ core.RetrievalPort = (*EnrichedPort)(nil)

// NewEnrichedPort 包装底层端口。
func NewEnrichedPort(port core.RetrievalPort, features Client) *EnrichedPort {
	return &EnrichedPort{
		RetrievalPort: port,
		Features:      features,
		Logger:        zerolog.Nop(),
	}
}

func (p *EnrichedPort) GetTrack(ctx context.Context, trackID string) (*core.Track, error) {
	t, err := p.RetrievalPort.GetTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	p.enrich(ctx, []*core.Track{t})
	return t, nil
}

func (p *EnrichedPort) ListTracks(ctx context.Context, limit int) ([]*core.Track, error) {
	ts, err := p.RetrievalPort.ListTracks(ctx, limit)
	if err != nil {
		return nil, err
	}
	p.enrich(ctx, ts)
	return ts, nil
}

// enrich 批量补全缺失特征，就地修改。
func (p *EnrichedPort) enrich(ctx context.Context, tracks []*core.Track) {
	if p.Features == nil {
		return
	}
	var missing []string
	for _, t := range tracks {
		if t != nil && t.Audio == (core.AudioFeatures{}) {
			missing = append(missing, t.ID)
		}
	}
	if len(missing) == 0 {
		return
	}

	fetched, err := p.Features.GetAudioFeatures(ctx, missing)
	if err != nil {
		p.Logger.Warn().Err(err).Int("tracks", len(missing)).Msg("feature enrich failed")
		return
	}
	for _, t := range tracks {
		if af, ok := fetched[t.ID]; ok {
			t.Audio = af
		}
	}
}
