package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/tunekit/core"
)

func TestMemoryStoreGetTrack(t *testing.T) {
	st := NewMemoryStore()
	st.AddTrack(&core.Track{ID: "t1", Title: "First"})

	got, err := st.GetTrack(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetTrack() error = %v", err)
	}
	if got.Title != "First" {
		t.Errorf("Title = %s, want First", got.Title)
	}

	// returned value is a copy
	got.Title = "mutated"
	again, _ := st.GetTrack(context.Background(), "t1")
	if again.Title != "First" {
		t.Error("GetTrack must return a copy, store was mutated")
	}

	if _, err := st.GetTrack(context.Background(), "missing"); !core.IsNotFound(err) {
		t.Errorf("missing track: got %v, want not-found", err)
	}
}

func TestMemoryStoreGetUserProfile(t *testing.T) {
	st := NewMemoryStore()
	p := core.NewUserProfile("u1")
	p.ReactionCount = 5
	st.SetUserProfile(p)

	got, err := st.GetUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if got.ReactionCount != 5 {
		t.Errorf("ReactionCount = %d, want 5", got.ReactionCount)
	}

	if _, err := st.GetUserProfile(context.Background(), "ghost"); !core.IsNotFound(err) {
		t.Errorf("missing profile: got %v, want not-found", err)
	}
}

func TestMemoryStoreQueryBySimilarity(t *testing.T) {
	st := NewMemoryStore()
	audio := core.AudioFeatures{Danceability: 0.8, Energy: 0.7, Valence: 0.6, Tempo: 0.5, Acousticness: 0.2}
	st.AddTrack(&core.Track{ID: "exact", Audio: audio})
	st.AddTrack(&core.Track{ID: "close", Audio: core.AudioFeatures{Danceability: 0.7, Energy: 0.6, Valence: 0.5, Tempo: 0.4, Acousticness: 0.1}})
	st.AddTrack(&core.Track{ID: "seed", Audio: audio})

	got, err := st.QueryBySimilarity(context.Background(), core.SimilarityQuery{
		Features:   audio.Core(),
		ExcludeIDs: []string{"seed"},
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("QueryBySimilarity() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TrackID != "exact" {
		t.Errorf("top = %s, want exact", got[0].TrackID)
	}
	if got[0].RawScore < got[1].RawScore {
		t.Error("results must be sorted by score desc")
	}
}

func TestMemoryStoreQueryBySimilarityLimit(t *testing.T) {
	st := NewMemoryStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		st.AddTrack(&core.Track{ID: id, Tags: []string{"rock"}})
	}
	got, err := st.QueryBySimilarity(context.Background(), core.SimilarityQuery{
		Tags:  []string{"rock"},
		Limit: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// equal scores break ties by id asc
	if got[0].TrackID != "a" || got[1].TrackID != "b" {
		t.Errorf("top-2 = [%s %s], want [a b]", got[0].TrackID, got[1].TrackID)
	}
}

func TestMemoryStoreQueryUserInteractions(t *testing.T) {
	st := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st.AddInteraction("u1", core.Interaction{TrackID: "old", PlayCount: 1, Timestamp: base})
	st.AddInteraction("u1", core.Interaction{TrackID: "mid", PlayCount: 2, Timestamp: base.Add(time.Hour)})
	st.AddInteraction("u1", core.Interaction{TrackID: "new", PlayCount: 3, Timestamp: base.Add(2 * time.Hour)})

	got, err := st.QueryUserInteractions(context.Background(), "u1", 2)
	if err != nil {
		t.Fatalf("QueryUserInteractions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TrackID != "new" || got[1].TrackID != "mid" {
		t.Errorf("order = [%s %s], want newest first", got[0].TrackID, got[1].TrackID)
	}

	empty, err := st.QueryUserInteractions(context.Background(), "nobody", 10)
	if err != nil || len(empty) != 0 {
		t.Errorf("unknown user: got %v, %v; want empty, nil", empty, err)
	}
}

func TestMemoryStoreQueryNeighborInteractions(t *testing.T) {
	st := NewMemoryStore()
	st.AddInteraction("me", core.Interaction{TrackID: "t1"})
	st.AddInteraction("me", core.Interaction{TrackID: "t2"})
	// big overlap
	st.AddInteraction("close", core.Interaction{TrackID: "t1"})
	st.AddInteraction("close", core.Interaction{TrackID: "t2"})
	// small overlap
	st.AddInteraction("casual", core.Interaction{TrackID: "t1"})
	// no overlap
	st.AddInteraction("stranger", core.Interaction{TrackID: "t9"})

	got, err := st.QueryNeighborInteractions(context.Background(), []string{"t1", "t2"}, "me", 10)
	if err != nil {
		t.Fatalf("QueryNeighborInteractions() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (stranger and me excluded)", len(got))
	}
	if got[0].UserID != "close" || got[0].OverlapScore != 2 {
		t.Errorf("top neighbor = %+v, want close with overlap 2", got[0])
	}
	if got[1].UserID != "casual" || got[1].OverlapScore != 1 {
		t.Errorf("second neighbor = %+v, want casual with overlap 1", got[1])
	}

	capped, err := st.QueryNeighborInteractions(context.Background(), []string{"t1", "t2"}, "me", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(capped) != 1 || capped[0].UserID != "close" {
		t.Errorf("topK=1 should keep only the closest neighbor, got %+v", capped)
	}
}

func TestMemoryStoreComments(t *testing.T) {
	st := NewMemoryStore()
	st.AddComment("t1", "love it")
	st.AddComment("t1", "boring")

	got, err := st.GetComments(context.Background(), "t1")
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	empty, err := st.GetComments(context.Background(), "silent")
	if err != nil || len(empty) != 0 {
		t.Errorf("no comments: got %v, %v; want empty, nil", empty, err)
	}
}

func TestMemoryStoreListTracks(t *testing.T) {
	st := NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		st.AddTrack(&core.Track{ID: id})
	}

	got, err := st.ListTracks(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListTracks() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s (id asc)", i, got[i].ID, want)
		}
	}

	limited, _ := st.ListTracks(context.Background(), 2)
	if len(limited) != 2 {
		t.Errorf("limited len = %d, want 2", len(limited))
	}
}
