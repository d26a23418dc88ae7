package translate

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

const sampleStream = "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n" +
	": keep-alive\n" +
	"data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\r\n\n" +
	"data: [DONE]\n\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"late\"}}]}\n"

// chunkedReader splits the payload into fixed-size reads.
type chunkedReader struct {
	data []byte
	size int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := min(r.size, len(p), len(r.data))
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) ([]StreamEvent, bool) {
	t.Helper()
	var events []StreamEvent
	done, err := ParseStream(r, "s1", func(evt StreamEvent) { events = append(events, evt) })
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	return events, done
}

func TestParseStreamAnyChunking(t *testing.T) {
	for size := 1; size <= len(sampleStream); size++ {
		events, done := collect(t, &chunkedReader{data: []byte(sampleStream), size: size})
		if !done {
			t.Fatalf("chunk %d: expected sentinel", size)
		}
		if len(events) != 3 {
			t.Fatalf("chunk %d: expected 3 events, got %d: %+v", size, len(events), events)
		}
		if events[0].Delta != "Hel" || events[1].Delta != "lo" {
			t.Fatalf("chunk %d: unexpected deltas %+v", size, events)
		}
		if events[0].Done || events[1].Done || !events[2].Done {
			t.Fatalf("chunk %d: unexpected done flags %+v", size, events)
		}
		for _, evt := range events {
			if evt.ID != "s1" {
				t.Fatalf("chunk %d: unexpected id %q", size, evt.ID)
			}
		}
	}
}

func TestParseStreamOneByteReader(t *testing.T) {
	events, done := collect(t, iotest.OneByteReader(strings.NewReader(sampleStream)))
	if !done || len(events) != 3 {
		t.Fatalf("unexpected result done=%v events=%+v", done, events)
	}
}

func TestParseStreamMultipleChoices(t *testing.T) {
	stream := `data: {"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}},{"delta":{"content":null}}]}` + "\n"
	events, done := collect(t, strings.NewReader(stream))
	if done {
		t.Fatal("did not expect sentinel")
	}
	if len(events) != 2 || events[0].Delta != "a" || events[1].Delta != "b" {
		t.Fatalf("unexpected events %+v", events)
	}
}

func TestParseStreamIgnoresGarbage(t *testing.T) {
	stream := "event: ping\ndata: not json\ndata:{\"choices\":[]}\n\n"
	events, done := collect(t, strings.NewReader(stream))
	if done || len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}
