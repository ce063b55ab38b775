// Shmali - Hebrew Podcast Recommendation Service
// Copyright 2026 Sivan Lackrif
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SivanLackrif/shmali

package recommend

import (
	"testing"
)

func TestTopicChanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		prev []string
		curr []string
		want bool
	}{
		{name: "identical", prev: []string{"ספורט"}, curr: []string{"ספורט"}, want: false},
		{name: "reordered", prev: []string{"ספורט", "חדשות"}, curr: []string{"חדשות", "ספורט"}, want: false},
		{name: "different topic", prev: []string{"ספורט"}, curr: []string{"טכנולוגיה"}, want: true},
		{name: "topic added", prev: []string{"ספורט"}, curr: []string{"ספורט", "חדשות"}, want: true},
		{name: "both empty", prev: nil, curr: nil, want: false},
		{name: "emptied", prev: []string{"ספורט"}, curr: nil, want: true},
		{name: "duplicates collapse", prev: []string{"ספורט"}, curr: []string{"ספורט", "ספורט"}, want: false},
		{name: "duplicate hides dropped topic", prev: []string{"ספורט", "חדשות"}, curr: []string{"ספורט", "ספורט"}, want: true},
		{name: "duplicate hides added topic", prev: []string{"ספורט", "ספורט"}, curr: []string{"ספורט", "חדשות"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prev := StructuredRequest{Topics: tt.prev}
			curr := StructuredRequest{Topics: tt.curr}
			if got := TopicChanged(prev, curr); got != tt.want {
				t.Errorf("TopicChanged = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionNextUnseen(t *testing.T) {
	t.Parallel()

	s := NewSession("u1")
	s.Pool = []CatalogItem{
		{Name: "a", Score: 0.9},
		{Name: "b", Score: 0.8},
		{Name: "c", Score: 0.7},
	}

	for _, want := range []string{"a", "b", "c"} {
		item, ok := s.NextUnseen()
		if !ok {
			t.Fatalf("expected unseen item %q", want)
		}
		if item.Name != want {
			t.Errorf("NextUnseen = %q, want %q", item.Name, want)
		}
		s.MarkShown(item)
	}

	if _, ok := s.NextUnseen(); ok {
		t.Error("expected exhausted pool")
	}
}

func TestSessionRecordRequest(t *testing.T) {
	t.Parallel()

	s := NewSession("u1")
	for i := 0; i < 8; i++ {
		s.RecordRequest(StructuredRequest{Keywords: []string{string(rune('a' + i))}}, 5)
	}

	if len(s.History) != 5 {
		t.Fatalf("history length = %d, want 5", len(s.History))
	}
	last, ok := s.LastRequest()
	if !ok || last.Keywords[0] != "h" {
		t.Errorf("LastRequest = %+v, want most recent entry", last)
	}
	if s.History[0].Keywords[0] != "d" {
		t.Errorf("oldest entry = %q, want d", s.History[0].Keywords[0])
	}
}

func TestStructuredRequestTerms(t *testing.T) {
	t.Parallel()

	req := StructuredRequest{
		Topics:   []string{"ספורט"},
		Keywords: []string{"כדורגל", "אימון"},
	}
	terms := req.Terms()
	if len(terms) != 3 || terms[0] != "ספורט" || terms[2] != "אימון" {
		t.Errorf("Terms = %v, want topics before keywords", terms)
	}
}
