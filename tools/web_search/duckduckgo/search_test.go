package duckduckgo

import "testing"

func TestFlattenNestedTopics(t *testing.T) {
	topics := []relatedTopic{
		{FirstURL: "https://a", Text: "A - first"},
		{Topics: []relatedTopic{
			{FirstURL: "https://b", Text: "B - nested"},
			{FirstURL: "https://c", Text: "C - nested"},
		}},
		{FirstURL: "https://d", Text: "D - last"},
	}
	flat := flatten(topics)
	if len(flat) != 4 {
		t.Fatalf("expected 4 flattened topics, got %d", len(flat))
	}
	want := []string{"https://a", "https://b", "https://c", "https://d"}
	for i, u := range want {
		if flat[i].FirstURL != u {
			t.Fatalf("topic %d: expected %s, got %s", i, u, flat[i].FirstURL)
		}
	}
}

func TestTopicTitle(t *testing.T) {
	if got := topicTitle("Go (programming language) - A compiled language."); got != "Go (programming language)" {
		t.Fatalf("dash-separated blurb not split, got %q", got)
	}
	long := "a very long blurb without any separator that keeps going well past fifty characters total"
	if got := topicTitle(long); len(got) != 53 {
		t.Fatalf("long blurb not truncated, got %q", got)
	}
	if got := topicTitle("short blurb"); got != "short blurb" {
		t.Fatalf("short blurb must pass through, got %q", got)
	}
}

func TestAbsoluteImageURL(t *testing.T) {
	if got := absoluteImageURL("/i/abc.jpg"); got != "https://duckduckgo.com/i/abc.jpg" {
		t.Fatalf("relative path not absolutized, got %q", got)
	}
	if got := absoluteImageURL("https://cdn.example.com/x.png"); got != "https://cdn.example.com/x.png" {
		t.Fatalf("absolute url must pass through, got %q", got)
	}
}
