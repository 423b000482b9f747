package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poliq-ai/poliq/internal/domain"
)

func TestParseModelAnswer_BareJSON(t *testing.T) {
	raw := `{"summary":"covered","steps":"1. file a claim","sources":[{"corpus":"hdfc","document_name":"health.pdf","snippet":"..."}],"cost_saving_tips":"tips"}`

	answer := parseModelAnswer(raw)

	assert.Equal(t, "covered", answer.Summary)
	assert.Equal(t, "1. file a claim", answer.Steps)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "hdfc", answer.Sources[0].Corpus)
	assert.Equal(t, "tips", answer.CostSavingTips)
}

func TestParseModelAnswer_MarkdownFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"covered\",\"sources\":[]}\n```"

	answer := parseModelAnswer(raw)

	assert.Equal(t, "covered", answer.Summary)
	assert.NotNil(t, answer.Sources)
}

func TestParseModelAnswer_JSONEmbeddedInProse(t *testing.T) {
	raw := `Sure, here is the answer: {"summary":"covered","sources":[]} Hope this helps!`

	answer := parseModelAnswer(raw)

	assert.Equal(t, "covered", answer.Summary)
}

func TestParseModelAnswer_UnparseableFallsBackToRaw(t *testing.T) {
	raw := "the model ignored the instructions entirely"

	answer := parseModelAnswer(raw)

	assert.Equal(t, raw, answer.Summary)
	assert.Equal(t, []domain.SourceItem{}, answer.Sources)
}

func TestParseModelAnswer_NilSourcesNormalized(t *testing.T) {
	answer := parseModelAnswer(`{"summary":"covered"}`)

	assert.NotNil(t, answer.Sources)
	assert.Empty(t, answer.Sources)
}

func TestParseModelAnswer_TrimsFields(t *testing.T) {
	answer := parseModelAnswer(`{"summary":"  covered  ","steps":" 1. claim \n"}`)

	assert.Equal(t, "covered", answer.Summary)
	assert.Equal(t, "1. claim", answer.Steps)
}
