package mindmap

import "testing"

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n{\"a\":1}\n\t", want: `{"a":1}`},
		{name: "fence with padding", in: "\n  ```json\n  {\"a\": 1}  \n```  \n", want: `{"a": 1}`},
		{name: "multi line body", in: "```json\n{\n  \"a\": 1\n}\n```", want: "{\n  \"a\": 1\n}"},
		{name: "no closing line", in: "```json\n{\"a\":1}", want: `{"a":1}`},
		{name: "fence only", in: "```", want: ""},
		{name: "mid string fence untouched", in: "text ```json\n{}\n```", want: "text ```json\n{}\n```"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Fatalf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripCodeFenceIdempotentOnCleanJSON(t *testing.T) {
	for _, in := range []string{
		`{"a":1}`,
		`{"central_topic":"Animals","branches":[{"topic":"Mammals","children":[{"topic":"Cats"}]}]}`,
		"[1, 2, 3]",
	} {
		once := StripCodeFence(in)
		if once != in {
			t.Fatalf("clean input changed: %q -> %q", in, once)
		}
		if twice := StripCodeFence(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q", once, twice)
		}
	}
}
