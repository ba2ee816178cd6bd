package finetune

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestModelfileRendersSystemBlock(t *testing.T) {
	ref := "https://example.com/dataset"
	out := Modelfile(ModelfileInput{
		BaseModel:    "llama3.1",
		DatasetName:  "support replies",
		DatasetText:  "q: hi\na: hello",
		ReferenceURL: &ref,
		TaskTitle:    "Draft onboarding plan",
	}, 0)

	assert.True(t, strings.HasPrefix(out, "FROM llama3.1\nSYSTEM \"\"\""))
	assert.True(t, strings.HasSuffix(out, `"""`))
	assert.Contains(t, out, "Task: Draft onboarding plan")
	assert.Contains(t, out, "Dataset: support replies")
	assert.Contains(t, out, "Reference: https://example.com/dataset")
	assert.Contains(t, out, "q: hi\na: hello")
}

func TestModelfileOmitsEmptyParts(t *testing.T) {
	out := Modelfile(ModelfileInput{
		BaseModel:   "llama3.1",
		DatasetName: "Training dataset",
		DatasetText: "   ",
		TaskTitle:   "T1",
	}, 0)

	assert.NotContains(t, out, "Reference:")
	assert.True(t, strings.HasSuffix(out, "Dataset: Training dataset\"\"\""))
}

func TestModelfileTruncatesDataset(t *testing.T) {
	long := strings.Repeat("a", 500)
	out := Modelfile(ModelfileInput{
		BaseModel:   "llama3.1",
		DatasetName: "Training dataset",
		DatasetText: long,
		TaskTitle:   "T1",
	}, 100)

	assert.Contains(t, out, strings.Repeat("a", 100))
	assert.NotContains(t, out, strings.Repeat("a", 101))
}

func TestModelfileTruncationKeepsRuneBoundaries(t *testing.T) {
	// Two-byte runes with an odd byte limit force a mid-rune cut point.
	out := Modelfile(ModelfileInput{
		BaseModel:   "llama3.1",
		DatasetName: "Training dataset",
		DatasetText: strings.Repeat("é", 50),
		TaskTitle:   "T1",
	}, 7)

	assert.True(t, utf8.ValidString(out))
	assert.Contains(t, out, strings.Repeat("é", 3))
	assert.NotContains(t, out, strings.Repeat("é", 4))
}
