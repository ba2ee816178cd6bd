package ollama

import (
	"bufio"
	"encoding/json"
	"io"
	"log"
	"strings"
)

// ProgressChunk is one decoded record of a newline-delimited progress
// stream. Raw keeps the original line for records carrying none of the
// known fields.
type ProgressChunk struct {
	Status   string          `json:"status"`
	Response string          `json:"response"`
	Detail   string          `json:"detail"`
	Raw      json.RawMessage `json:"-"`
}

// Summary normalizes a chunk into one short human-readable line, preferring
// status, then response, then detail, else the raw record.
func (c ProgressChunk) Summary() string {
	switch {
	case c.Status != "":
		return c.Status
	case c.Response != "":
		return c.Response
	case c.Detail != "":
		return c.Detail
	default:
		return string(c.Raw)
	}
}

func parseProgress(line []byte) (ProgressChunk, bool) {
	var chunk ProgressChunk
	if err := json.Unmarshal(line, &chunk); err != nil {
		return ProgressChunk{}, false
	}
	chunk.Raw = append(json.RawMessage(nil), line...)
	return chunk, true
}

// decodeLines reads newline-delimited records from r and hands each complete
// non-blank line to onLine, in order, until the stream closes. Partial lines
// are buffered across reads; a trailing unterminated line is still
// delivered.
func decodeLines(r io.Reader, onLine func(line []byte)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		onLine(line)
	}
	return sc.Err()
}

// logSkip records a non-fatal decode problem; the stream keeps going.
func logSkip(op string, err error) {
	log.Printf("[warn] operation=ollama_%s message=skipping record error=%v", op, err)
}
