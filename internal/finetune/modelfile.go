package finetune

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ModelfileInput carries everything baked into the synthesized model
// description.
type ModelfileInput struct {
	BaseModel    string
	DatasetName  string
	DatasetText  string
	ReferenceURL *string
	TaskTitle    string
}

// Modelfile renders the template description for the create stage: the base
// model plus a SYSTEM block embedding the task title, dataset name, optional
// reference line and the dataset text. maxDatasetChars bounds the dataset
// text to keep memory and request size in check; zero means no bound.
func Modelfile(in ModelfileInput, maxDatasetChars int) string {
	dataset := strings.TrimSpace(in.DatasetText)
	if maxDatasetChars > 0 && len(dataset) > maxDatasetChars {
		// Back off to a rune start so the cut never leaves a broken
		// multibyte sequence in the SYSTEM block.
		cut := maxDatasetChars
		for cut > 0 && !utf8.RuneStart(dataset[cut]) {
			cut--
		}
		dataset = dataset[:cut]
	}

	parts := []string{
		fmt.Sprintf("Task: %s", in.TaskTitle),
		fmt.Sprintf("Dataset: %s", in.DatasetName),
	}
	if in.ReferenceURL != nil && *in.ReferenceURL != "" {
		parts = append(parts, fmt.Sprintf("Reference: %s", *in.ReferenceURL))
	}
	if dataset != "" {
		parts = append(parts, dataset)
	}
	contextBlock := strings.Join(parts, "\n\n")

	return fmt.Sprintf("FROM %s\nSYSTEM \"\"\"%s\"\"\"", in.BaseModel, contextBlock)
}
