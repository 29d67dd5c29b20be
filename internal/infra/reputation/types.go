package reputation

// BatchRequest is the request body for a batched reputation lookup.
type BatchRequest struct {
	AuthorIDs []string `json:"author_ids"`
}

// BatchResponse is the reputation service's batch response. Scores are 0-100
// keyed by author ID; unknown authors are omitted.
type BatchResponse struct {
	Reputations map[string]int `json:"reputations"`
}
