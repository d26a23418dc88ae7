package translate

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"mangatl/internal/logging"
	"mangatl/internal/services"
	"mangatl/internal/services/remote"
)

// Publisher receives streamed translation events.
type Publisher interface {
	Publish(name string, payload any)
}

// Service proxies translation requests through the shared client.
type Service struct {
	client    *remote.Client
	publisher Publisher
	logger    *slog.Logger
}

// NewService constructs a translation proxy. publisher may be nil when
// streaming is not used.
func NewService(client *remote.Client, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		publisher: publisher,
		logger:    logging.NewComponentLogger(logger, "translate"),
	}
}

// Translate POSTs payload verbatim to apiURL and returns the decoded
// completion.
func (s *Service) Translate(ctx context.Context, apiURL string, payload json.RawMessage) (any, error) {
	if err := requireURL(apiURL, "translate"); err != nil {
		return nil, err
	}
	logger := logging.WithContext(ctx, s.logger)
	if content, ok := lastMessageContent(payload); ok {
		logger.Debug("sending to llm", logging.String("content", content))
	}
	result, err := s.client.PostJSON(ctx, apiURL, payload, remote.WithParsePrefix(remote.ParsePrefixResponse))
	if err != nil {
		return nil, err
	}
	logger.Debug("received from llm", logging.Any("response", result))
	return result, nil
}

// StreamResult reports the outcome of a streamed translation.
type StreamResult struct {
	StreamID string `json:"streamId"`
	Deltas   int    `json:"deltas"`
	Done     bool   `json:"done"`
}

// Stream POSTs payload to apiURL and publishes each streamed delta as an
// "llm-stream" event tagged with streamID. An empty streamID is replaced by a
// generated UUID. Stream returns once the sentinel arrives or the upstream
// body ends.
func (s *Service) Stream(ctx context.Context, apiURL string, payload json.RawMessage, streamID string) (StreamResult, error) {
	result := StreamResult{StreamID: strings.TrimSpace(streamID)}
	if result.StreamID == "" {
		result.StreamID = uuid.NewString()
	}
	if err := requireURL(apiURL, "translate stream"); err != nil {
		return result, err
	}
	logger := logging.WithContext(ctx, s.logger).With(logging.String("stream_id", result.StreamID))
	if content, ok := lastMessageContent(payload); ok {
		logger.Debug("sending to llm (stream)", logging.String("content", content))
	}

	body, err := s.client.PostStream(ctx, apiURL, payload)
	if err != nil {
		return result, err
	}
	defer body.Close()

	done, err := ParseStream(body, result.StreamID, func(evt StreamEvent) {
		if !evt.Done {
			result.Deltas++
		}
		if s.publisher != nil {
			s.publisher.Publish(EventStream, evt)
		}
	})
	result.Done = done
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		logging.WarnWithContext(logger, "stream ended early", "translate_stream_truncated",
			logging.Error(err),
			logging.Int("deltas", result.Deltas),
			logging.String(logging.FieldImpact, "translation may be incomplete"),
			logging.String(logging.FieldErrorHint, "retry the translation"),
		)
		return result, &remote.TransportError{Err: err}
	}
	logger.Debug("stream finished", logging.Int("deltas", result.Deltas), logging.Bool("done", done))
	return result, nil
}

// DeepLXRequest is the input for a DeepLX translation.
type DeepLXRequest struct {
	APIURL     string
	APIKey     string
	Texts      []string
	TargetLang string
	SourceLang *string
}

type deeplxBody struct {
	Text       string  `json:"text"`
	TargetLang string  `json:"target_lang"`
	SourceLang *string `json:"source_lang,omitempty"`
}

// DeepLX joins texts with newlines and POSTs them to a DeepLX endpoint. A
// non-empty key is sent as a bearer token.
func (s *Service) DeepLX(ctx context.Context, req DeepLXRequest) (any, error) {
	if err := requireURL(req.APIURL, "deeplx"); err != nil {
		return nil, err
	}
	body := deeplxBody{
		Text:       strings.Join(req.Texts, "\n"),
		TargetLang: req.TargetLang,
		SourceLang: req.SourceLang,
	}
	return s.client.PostJSON(ctx, req.APIURL, body, remote.WithBearer(req.APIKey))
}

// lastMessageContent returns messages[-1].content when it is a string.
func lastMessageContent(payload json.RawMessage) (string, bool) {
	var envelope struct {
		Messages []struct {
			Content any `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || len(envelope.Messages) == 0 {
		return "", false
	}
	content, ok := envelope.Messages[len(envelope.Messages)-1].Content.(string)
	return content, ok
}

func requireURL(apiURL, operation string) error {
	if strings.TrimSpace(apiURL) == "" {
		return services.Wrap(services.ErrValidation, "translate", operation, "apiUrl is required", nil)
	}
	return nil
}
