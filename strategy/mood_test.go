package strategy

import (
	"context"
	"testing"

	"github.com/rushteam/tunekit/core"
	"github.com/rushteam/tunekit/store"
)

func TestInferMoodFromFeatures(t *testing.T) {
	tests := []struct {
		name    string
		valence float64
		energy  float64
		want    core.Mood
	}{
		{name: "high valence high energy", valence: 0.7, energy: 0.7, want: core.MoodHappy},
		{name: "high valence low energy", valence: 0.7, energy: 0.3, want: core.MoodRelaxed},
		{name: "low valence high energy", valence: 0.3, energy: 0.7, want: core.MoodIntense},
		{name: "low valence low energy", valence: 0.2, energy: 0.2, want: core.MoodSad},
		{name: "mid range is neutral", valence: 0.5, energy: 0.5, want: core.MoodNeutral},
		{name: "exact threshold is not high", valence: 0.6, energy: 0.6, want: core.MoodNeutral},
		{name: "exact low threshold counts as low", valence: 0.4, energy: 0.4, want: core.MoodSad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InferMoodFromFeatures(tt.valence, tt.energy); got != tt.want {
				t.Errorf("InferMoodFromFeatures(%v, %v) = %s, want %s", tt.valence, tt.energy, got, tt.want)
			}
		})
	}
}

func moodStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.AddTrack(&core.Track{ID: "h1", Mood: core.MoodHappy})
	st.AddTrack(&core.Track{ID: "h2", Mood: core.MoodHappy})
	st.AddTrack(&core.Track{ID: "h3", Mood: core.MoodHappy})
	st.AddTrack(&core.Track{ID: "s1", Mood: core.MoodSad})
	return st
}

func TestMoodExplicitRequest(t *testing.T) {
	s := &MoodScorer{Port: moodStore()}
	rctx := &core.RecommendContext{UserID: "u1", Mood: core.MoodHappy, Limit: 10, RandSeed: 42}

	cands, err := s.Score(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(cands) != 3 {
		t.Fatalf("len(cands) = %d, want 3 happy tracks", len(cands))
	}
	for _, c := range cands {
		if c.TrackID == "s1" {
			t.Error("sad track leaked into a happy-mood query")
		}
		if c.Source != core.StrategyMood {
			t.Errorf("Source = %s, want mood", c.Source)
		}
	}
}

func TestMoodMajorityVoteInference(t *testing.T) {
	st := moodStore()
	// two happy listens, one sad listen → happy wins the vote
	st.AddInteraction("u1", core.Interaction{TrackID: "h1"})
	st.AddInteraction("u1", core.Interaction{TrackID: "h2"})
	st.AddInteraction("u1", core.Interaction{TrackID: "s1"})

	s := &MoodScorer{Port: st}
	mood, err := s.targetMood(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("targetMood() error = %v", err)
	}
	if mood != core.MoodHappy {
		t.Errorf("targetMood() = %s, want happy", mood)
	}
}

func TestMoodFeatureInferenceWhenVotesAbsent(t *testing.T) {
	st := store.NewMemoryStore()
	// untagged tracks with low valence/energy → sad by thresholds
	st.AddTrack(&core.Track{ID: "x1", Audio: core.AudioFeatures{Valence: 0.2, Energy: 0.2}})
	st.AddTrack(&core.Track{ID: "x2", Audio: core.AudioFeatures{Valence: 0.3, Energy: 0.1}})
	st.AddInteraction("u1", core.Interaction{TrackID: "x1"})
	st.AddInteraction("u1", core.Interaction{TrackID: "x2"})

	s := &MoodScorer{Port: st}
	mood, err := s.targetMood(context.Background(), &core.RecommendContext{UserID: "u1"})
	if err != nil {
		t.Fatalf("targetMood() error = %v", err)
	}
	if mood != core.MoodSad {
		t.Errorf("targetMood() = %s, want sad", mood)
	}
}

func TestMoodJitterIsSeedDeterministic(t *testing.T) {
	s := &MoodScorer{Port: moodStore()}
	base := &core.RecommendContext{UserID: "u1", Mood: core.MoodHappy, Limit: 10, RandSeed: 7}

	first, err := s.Score(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Score(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("result sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("rank %d differs under same seed: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestMoodScoreTrackIsDeterministic(t *testing.T) {
	s := &MoodScorer{Port: moodStore()}
	rctx := &core.RecommendContext{UserID: "u1", Mood: core.MoodHappy, RandSeed: 99}

	got, err := s.ScoreTrack(context.Background(), rctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if got != core.MoodMatchBoost {
		t.Errorf("matching track = %v, want %v", got, core.MoodMatchBoost)
	}

	got, err = s.ScoreTrack(context.Background(), rctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("mismatching track = %v, want 0", got)
	}
}

func TestMoodDegradesWithoutSignal(t *testing.T) {
	s := &MoodScorer{Port: store.NewMemoryStore()}
	_, err := s.Score(context.Background(), &core.RecommendContext{UserID: "silent", Limit: 10})
	if !core.IsStrategyUnavailable(err) {
		t.Errorf("want strategy degrade without any mood signal, got %v", err)
	}
}
