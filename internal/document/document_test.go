package document

import (
	"errors"
	"testing"
)

func TestSnapshotRuns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []struct {
			text string
			kind RunKind
		}
	}{
		{
			name: "plain prose stays one run across lines",
			text: "one line\nand another\n",
			want: []struct {
				text string
				kind RunKind
			}{
				{"one line\nand another\n", RunText},
			},
		},
		{
			name: "fenced block is verbatim",
			text: "before\n```\ncode here\n```\nafter\n",
			want: []struct {
				text string
				kind RunKind
			}{
				{"before\n", RunText},
				{"```\ncode here\n```\n", RunVerbatim},
				{"after\n", RunText},
			},
		},
		{
			name: "inline code span is verbatim",
			text: "use `osx.Open` here",
			want: []struct {
				text string
				kind RunKind
			}{
				{"use ", RunText},
				{"`osx.Open`", RunVerbatim},
				{" here", RunText},
			},
		},
		{
			name: "unmatched backtick is prose",
			text: "a ` stray",
			want: []struct {
				text string
				kind RunKind
			}{
				{"a ` stray", RunText},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := New(tt.text).Snapshot()
			runs := snap.Runs()
			if len(runs) != len(tt.want) {
				t.Fatalf("got %d runs, want %d: %+v", len(runs), len(tt.want), runs)
			}
			pos := Offset(0)
			for i, run := range runs {
				if run.Text != tt.want[i].text {
					t.Errorf("run %d text = %q, want %q", i, run.Text, tt.want[i].text)
				}
				if run.Kind != tt.want[i].kind {
					t.Errorf("run %d kind = %v, want %v", i, run.Kind, tt.want[i].kind)
				}
				if run.Start != pos {
					t.Errorf("run %d start = %d, want %d", i, run.Start, pos)
				}
				pos = run.End()
			}
			if pos != snap.Len() {
				t.Errorf("runs cover %d bytes, want %d", pos, snap.Len())
			}
		})
	}
}

func TestApplyEditsBatch(t *testing.T) {
	d := New("aaa bbb aaa")

	var notified int
	d.OnChange(func(Change) { notified++ })

	edits := []Edit{
		{Start: 0, End: 3, Text: "xyz"},
		{Start: 8, End: 11, Text: "xyz"},
	}
	if err := d.ApplyEdits(edits); err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}

	if got := d.Text(); got != "xyz bbb xyz" {
		t.Errorf("text = %q, want %q", got, "xyz bbb xyz")
	}
	if d.Version() != 1 {
		t.Errorf("version = %d, want 1 after one batch", d.Version())
	}
	if notified != 1 {
		t.Errorf("listeners notified %d times, want 1", notified)
	}
}

func TestApplyEditsGrowingReplacement(t *testing.T) {
	// A replacement longer than its source must not shift the spans of
	// edits applied after it; descending order guarantees that.
	d := New("ab cd ef")
	edits := []Edit{
		{Start: 0, End: 2, Text: "longer"},
		{Start: 3, End: 5, Text: "longer"},
		{Start: 6, End: 8, Text: "longer"},
	}
	if err := d.ApplyEdits(edits); err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if got := d.Text(); got != "longer longer longer" {
		t.Errorf("text = %q, want %q", got, "longer longer longer")
	}
}

func TestApplyEditsErrors(t *testing.T) {
	tests := []struct {
		name  string
		edits []Edit
		want  error
	}{
		{
			name:  "overlap",
			edits: []Edit{{Start: 0, End: 4, Text: "x"}, {Start: 2, End: 6, Text: "y"}},
			want:  ErrEditsOverlap,
		},
		{
			name:  "end before start",
			edits: []Edit{{Start: 4, End: 2, Text: "x"}},
			want:  ErrRangeInvalid,
		},
		{
			name:  "past end of text",
			edits: []Edit{{Start: 0, End: 99, Text: "x"}},
			want:  ErrRangeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("hello world")
			err := d.ApplyEdits(tt.edits)
			if !errors.Is(err, tt.want) {
				t.Errorf("ApplyEdits = %v, want %v", err, tt.want)
			}
			if d.Text() != "hello world" {
				t.Errorf("failed batch mutated text to %q", d.Text())
			}
			if d.Version() != 0 {
				t.Errorf("failed batch bumped version to %d", d.Version())
			}
		})
	}
}

func TestReplaceRangeChange(t *testing.T) {
	d := New("hello world")

	var got Change
	d.OnChange(func(c Change) { got = c })

	if err := d.ReplaceRange(6, 11, ""); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if d.Text() != "hello " {
		t.Errorf("text = %q", d.Text())
	}
	if got.OldText != "world" || got.NewText != "" {
		t.Errorf("change = %+v", got)
	}
	if !got.IsDeletion() {
		t.Error("expected deletion change")
	}
}

func TestSnapshotImmutable(t *testing.T) {
	d := New("first")
	snap := d.Snapshot()
	if err := d.ReplaceRange(0, 5, "second"); err != nil {
		t.Fatalf("ReplaceRange: %v", err)
	}
	if snap.Text() != "first" {
		t.Errorf("snapshot text = %q, want %q", snap.Text(), "first")
	}
	if snap.Version() == d.Version() {
		t.Error("snapshot version should lag after mutation")
	}
}

func TestTextRange(t *testing.T) {
	snap := New("hello world").Snapshot()
	if got := snap.TextRange(6, 11); got != "world" {
		t.Errorf("TextRange = %q", got)
	}
	if got := snap.TextRange(-1, 99); got != "hello world" {
		t.Errorf("clamped TextRange = %q", got)
	}
}
