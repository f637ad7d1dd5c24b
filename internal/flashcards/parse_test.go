package flashcards

import (
	"reflect"
	"testing"
)

func TestParseBulk(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		want        []ParsedCard
		wantSkipped int
	}{
		{
			name:    "labelled blocks",
			content: "Q: What is H2O?\nA: Water\n\nq: Capital of Peru\na: Lima\n",
			want: []ParsedCard{
				{"What is H2O?", "Water"},
				{"Capital of Peru", "Lima"},
			},
		},
		{
			name:    "question and answer on one line",
			content: "What is 2+2? 4\nWho wrote Hamlet?   Shakespeare",
			want: []ParsedCard{
				{"What is 2+2?", "4"},
				{"Who wrote Hamlet?", "Shakespeare"},
			},
		},
		{
			name:    "answer on the following line",
			content: "What is the speed of light?\n299,792 km/s",
			want:    []ParsedCard{{"What is the speed of light?", "299,792 km/s"}},
		},
		{
			name:    "answer keeps later question marks",
			content: "Is it? Yes? Really",
			want:    []ParsedCard{{"Is it?", "Yes? Really"}},
		},
		{
			name:        "unpaired lines are skipped",
			content:     "just a note\nA: orphan answer\nQ: dangling",
			wantSkipped: 3,
		},
		{
			name:        "new question replaces an unanswered one",
			content:     "Q: first\nQ: second\nA: two",
			want:        []ParsedCard{{"second", "two"}},
			wantSkipped: 1,
		},
		{
			name:    "empty",
			content: "  \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped := ParseBulk(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("cards = %#v, want %#v", got, tt.want)
			}
			if skipped != tt.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tt.wantSkipped)
			}
		})
	}
}
