// Package translate proxies LLM chat-completion and DeepLX translation calls.
//
// Blocking translation returns the decoded completion. Streaming translation
// reads the upstream server-sent-event body line by line and publishes one
// "llm-stream" event per content delta, then a done event when the [DONE]
// sentinel arrives.
package translate
