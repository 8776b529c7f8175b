package feature

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/store"
)

type stubClient struct {
	features map[string]core.AudioFeatures
	err      error
	calls    int
}

func (c *stubClient) GetAudioFeatures(_ context.Context, trackIDs []string) (map[string]core.AudioFeatures, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	out := make(map[string]core.AudioFeatures)
	for _, id := range trackIDs {
		if af, ok := c.features[id]; ok {
			out[id] = af
		}
	}
	return out, nil
}

func (c *stubClient) Close() error { return nil }

func TestEnrichedPortBackfillsMissingFeatures(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddTrack(&core.Track{ID: "bare"})
	st.AddTrack(&core.Track{ID: "rich", Audio: core.AudioFeatures{Energy: 0.9, Valence: 0.5}})

	offline := core.AudioFeatures{Danceability: 0.6, Energy: 0.7, Valence: 0.4, Tempo: 0.5, Acousticness: 0.3}
	client := &stubClient{features: map[string]core.AudioFeatures{
		"bare": offline,
		"rich": {Energy: 0.1}, // must never overwrite existing features
	}}
	port := NewEnrichedPort(st, client)

	got, err := port.GetTrack(context.Background(), "bare")
	if err != nil {
		t.Fatalf("GetTrack() error = %v", err)
	}
	if got.Audio != offline {
		t.Errorf("Audio = %+v, want backfilled %+v", got.Audio, offline)
	}

	got, err = port.GetTrack(context.Background(), "rich")
	if err != nil {
		t.Fatal(err)
	}
	if got.Audio.Energy != 0.9 {
		t.Errorf("existing features were overwritten: %+v", got.Audio)
	}
}

func TestEnrichedPortListTracks(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddTrack(&core.Track{ID: "a"})
	st.AddTrack(&core.Track{ID: "b", Audio: core.AudioFeatures{Valence: 0.5}})

	offline := core.AudioFeatures{Valence: 0.8, Energy: 0.2}
	port := NewEnrichedPort(st, &stubClient{features: map[string]core.AudioFeatures{"a": offline}})

	tracks, err := port.ListTracks(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListTracks() error = %v", err)
	}
	for _, tr := range tracks {
		if tr.ID == "a" && tr.Audio != offline {
			t.Errorf("a.Audio = %+v, want backfilled", tr.Audio)
		}
		if tr.ID == "b" && tr.Audio.Valence != 0.5 {
			t.Errorf("b.Audio mutated: %+v", tr.Audio)
		}
	}
}

func TestEnrichedPortSkipsLookupWhenComplete(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddTrack(&core.Track{ID: "rich", Audio: core.AudioFeatures{Energy: 0.9}})

	client := &stubClient{}
	port := NewEnrichedPort(st, client)
	if _, err := port.GetTrack(context.Background(), "rich"); err != nil {
		t.Fatal(err)
	}
	if client.calls != 0 {
		t.Errorf("feature store queried %d times for a complete track, want 0", client.calls)
	}
}

func TestEnrichedPortToleratesStoreFailure(t *testing.T) {
	st := store.NewMemoryStore()
	st.AddTrack(&core.Track{ID: "bare"})

	port := NewEnrichedPort(st, &stubClient{err: errors.New("feast down")})
	got, err := port.GetTrack(context.Background(), "bare")
	if err != nil {
		t.Fatalf("feature store failure must not break retrieval: %v", err)
	}
	if got.ID != "bare" {
		t.Errorf("got %+v", got)
	}
}
