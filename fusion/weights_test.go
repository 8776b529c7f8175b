package fusion

import (
	"math"
	"testing"

	"github.com/rushteam/tunekit/core"
)

func TestComputeColdStartDefaults(t *testing.T) {
	calc := &WeightCalculator{}

	tests := []struct {
		name    string
		profile *core.UserProfile
	}{
		{name: "nil profile", profile: nil},
		{name: "zero activity", profile: core.NewUserProfile("u1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Compute(tt.profile, false)
			want := DefaultWeights()
			if got != want {
				t.Errorf("Compute() = %+v, want defaults %+v", got, want)
			}
		})
	}
}

func TestComputeCurationHeavyUser(t *testing.T) {
	p := core.NewUserProfile("u1")
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		p.Favorites[id] = struct{}{}
	}
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		p.Playlists[id] = struct{}{}
	}
	// curation 15, reactions 0, total 15:
	// content 0.4 + 15/30 = 0.9, collab 0.3, popularity 1-0.9-0.3 = -0.2
	// clamp → (0.9, 0.3, 0) → normalize → (0.75, 0.25, 0)
	got := (&WeightCalculator{}).Compute(p, false)

	if math.Abs(got.Content-0.75) > core.WeightSumTolerance {
		t.Errorf("Content = %v, want 0.75", got.Content)
	}
	if math.Abs(got.Collaborative-0.25) > core.WeightSumTolerance {
		t.Errorf("Collaborative = %v, want 0.25", got.Collaborative)
	}
	if got.Popularity != 0 {
		t.Errorf("Popularity = %v, want 0 after clamping", got.Popularity)
	}
	if !got.Valid() {
		t.Errorf("weights must satisfy the sum invariant, got sum %v", got.Sum())
	}
}

func TestComputeReactionHeavyUser(t *testing.T) {
	p := core.NewUserProfile("u1")
	p.Favorites["a"] = struct{}{}
	p.ReactionCount = 9
	// curation 1, total 10:
	// content 0.4 + 1/20 = 0.45, collab 0.3 + 0.9 = 1.2, pop 1-0.45-1.2 = -0.65
	// clamp → (0.45, 1.2, 0), normalize → (0.2727..., 0.7272..., 0)
	got := (&WeightCalculator{}).Compute(p, false)

	if got.Collaborative <= got.Content {
		t.Errorf("reaction-heavy user must lean collaborative: %+v", got)
	}
	if !got.Valid() {
		t.Errorf("weights must satisfy the sum invariant, got sum %v", got.Sum())
	}
}

func TestComputeMoodCarveOut(t *testing.T) {
	got := (&WeightCalculator{}).Compute(nil, true)

	if math.Abs(got.Mood-0.1) > core.WeightSumTolerance {
		t.Errorf("Mood = %v, want 0.1", got.Mood)
	}
	if math.Abs(got.Content-0.36) > core.WeightSumTolerance {
		t.Errorf("Content = %v, want 0.36", got.Content)
	}
	if !got.Valid() {
		t.Errorf("sum invariant violated: %v", got.Sum())
	}

	custom := (&WeightCalculator{MoodShare: 0.2}).Compute(nil, true)
	if math.Abs(custom.Mood-0.2) > core.WeightSumTolerance {
		t.Errorf("custom Mood = %v, want 0.2", custom.Mood)
	}
	if !custom.Valid() {
		t.Errorf("sum invariant violated with custom share: %v", custom.Sum())
	}
}

// Sweep a grid of activity profiles: every computed vector must be
// non-negative and sum to 1 within tolerance.
func TestComputeSumInvariantAcrossProfiles(t *testing.T) {
	calc := &WeightCalculator{}
	counts := []int{0, 1, 3, 10, 50, 500}

	for _, favs := range counts {
		for _, reactions := range counts {
			for _, moodActive := range []bool{false, true} {
				p := core.NewUserProfile("u")
				for i := 0; i < favs; i++ {
					p.Favorites[string(rune('a'+i%26))+string(rune('0'+i/26))] = struct{}{}
				}
				p.ReactionCount = reactions

				got := calc.Compute(p, moodActive)
				if !got.Valid() {
					t.Errorf("favs=%d reactions=%d mood=%v: invalid weights %+v (sum %v)",
						favs, reactions, moodActive, got, got.Sum())
				}
			}
		}
	}
}

// Same profile in, same weights out.
func TestComputeIsPure(t *testing.T) {
	p := core.NewUserProfile("u1")
	p.Favorites["a"] = struct{}{}
	p.ReactionCount = 7

	calc := &WeightCalculator{}
	first := calc.Compute(p, true)
	second := calc.Compute(p, true)
	if first != second {
		t.Errorf("Compute is not deterministic: %+v vs %+v", first, second)
	}
}
