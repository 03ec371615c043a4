package models

// Result is one web search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ImageResult is one image search hit.
type ImageResult struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Source string `json:"source"`
}
