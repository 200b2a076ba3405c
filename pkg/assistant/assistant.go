// Package assistant provides the chat-completion client behind SARA's
// conversational replies.
//
// The client speaks the OpenAI-compatible chat completions API exposed
// by Groq. Every request carries the fixed SARA persona as the system
// message plus the single user utterance; conversation memory lives in
// the caller, not here.
//
// Example usage:
//
//	client, _ := assistant.NewClient(
//	    assistant.WithAPIKey(os.Getenv("GROQ_API_KEY")),
//	)
//	reply, err := client.Complete(ctx, "كيف أجدد رخصة القيادة؟")
package assistant

import "context"

// Persona is the fixed system instruction establishing SARA's role.
// It is sent with every chat-completion request.
const Persona = "أنت سارا، مساعدة ذكية للخدمات الحكومية السعودية. ساعد المواطنين في الوصول إلى خدمات أبشر بطريقة سهلة ومفهومة."

// Completer generates a single assistant reply for a user utterance.
// All implementations must satisfy this interface so the call session
// can run against a fake in tests.
type Completer interface {
	// Complete returns the assistant's reply text for the given user
	// text. Implementations must not retry beyond the documented
	// model fallback.
	Complete(ctx context.Context, userText string) (string, error)
}

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
