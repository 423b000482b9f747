package domain

// SourceItem is a compact citation: one per unique (corpus, document)
// pair among the retrieved records, with a short cleaned-up snippet.
type SourceItem struct {
	Corpus       string `json:"corpus"`
	DocumentName string `json:"document_name"`
	Snippet      string `json:"snippet"`
}

// Answer is the structured response synthesized by the chat model.
// Summary and Steps are grounded strictly in the retrieved policy text;
// CostSavingTips may draw on general knowledge and says so.
type Answer struct {
	Summary        string       `json:"summary"`
	Steps          string       `json:"steps"`
	Sources        []SourceItem `json:"sources"`
	CostSavingTips string       `json:"cost_saving_tips"`
}
