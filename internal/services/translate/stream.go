package translate

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// EventStream is the event name used for streamed translation deltas.
const EventStream = "llm-stream"

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
	maxLineBytes = 4 << 20
)

// StreamEvent is the payload published for each parsed frame.
type StreamEvent struct {
	ID    string `json:"id"`
	Delta any    `json:"delta,omitempty"`
	Done  bool   `json:"done"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content json.RawMessage `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseStream reads SSE lines from r and calls emit for every content delta
// and for the terminal sentinel. Lines are reassembled across read boundaries.
// Parsing stops after the sentinel or at EOF. It reports whether the sentinel
// was seen.
func ParseStream(r io.Reader, id string, emit func(StreamEvent)) (bool, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := line[len(dataPrefix):]
		if data == doneSentinel {
			emit(StreamEvent{ID: id, Done: true})
			return true, nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		for _, choice := range chunk.Choices {
			content := bytes.TrimSpace(choice.Delta.Content)
			if len(content) == 0 || bytes.Equal(content, []byte("null")) {
				continue
			}
			var delta any
			if err := json.Unmarshal(content, &delta); err != nil {
				continue
			}
			emit(StreamEvent{ID: id, Delta: delta})
		}
	}
	return false, scanner.Err()
}
