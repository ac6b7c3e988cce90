package model_test

import (
	"encoding/json"
	"testing"

	"github.com/raysh454/safelink/internal/model"
)

func TestSafetyLabel_Thresholds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score int
		want  string
	}{
		{100, model.LabelSafe},
		{80, model.LabelSafe},
		{79, model.LabelCaution},
		{50, model.LabelCaution},
		{49, model.LabelPotentiallyUnsafe},
		{0, model.LabelPotentiallyUnsafe},
	}
	for _, tt := range tests {
		if got := model.SafetyLabel(tt.score); got != tt.want {
			t.Errorf("SafetyLabel(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()
	for in, want := range map[int]int{-40: 0, 0: 0, 55: 55, 100: 100, 130: 100} {
		if got := model.ClampScore(in); got != want {
			t.Errorf("ClampScore(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestAssessment_Scored(t *testing.T) {
	t.Parallel()
	var nilAssessment *model.Assessment
	if nilAssessment.Scored() {
		t.Error("nil assessment must not be scored")
	}
	if (&model.Assessment{Degraded: true}).Scored() {
		t.Error("degraded assessment must not be scored")
	}
	if !(&model.Assessment{Score: 40}).Scored() {
		t.Error("plain assessment must be scored")
	}
}

func TestAssessment_JSONScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   model.Assessment
		want bool
	}{
		{"scored", model.Assessment{Score: 40, Label: model.LabelPotentiallyUnsafe}, true},
		{"scored zero", model.Assessment{Score: 0}, true},
		{"degraded", model.Assessment{Explanation: "unavailable", Degraded: true}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := json.Marshal(&model.FinalResult{AI: &tt.in})
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var doc struct {
				AI map[string]any `json:"ai"`
			}
			if err := json.Unmarshal(b, &doc); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			score, ok := doc.AI["score"]
			if ok != tt.want {
				t.Fatalf("score present = %v, want %v (%s)", ok, tt.want, b)
			}
			if ok && score != float64(tt.in.Score) {
				t.Errorf("score = %v, want %d", score, tt.in.Score)
			}
			if degraded, _ := doc.AI["degraded"].(bool); degraded != tt.in.Degraded {
				t.Errorf("degraded = %v", doc.AI["degraded"])
			}
		})
	}
}
