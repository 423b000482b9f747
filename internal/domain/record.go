package domain

// RetrievedRecord is the unit of retrieval output. It is constructed per
// query and never persisted. Score is 1/(1+distance): strictly positive,
// higher is more relevant, meaningful only for relative ranking.
type RetrievedRecord struct {
	CorpusName     string  `json:"corpus_name"`
	SourceDocument string  `json:"source_document"`
	ChunkID        int     `json:"chunk_id"`
	Score          float64 `json:"score"`
	RawText        string  `json:"raw_text"`
	MergedText     string  `json:"merged_text"`
}
