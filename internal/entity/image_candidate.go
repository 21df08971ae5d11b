package entity

// ImageCandidate is a proposed image with optional hints. URL is already absolute
// when a strategy hands it back.
type ImageCandidate struct {
	URL    string
	Alt    string
	Width  string
	Height string
}
