package tutor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/biocactus/biocactus/internal/activity"
	"github.com/biocactus/biocactus/internal/ai"
	"github.com/biocactus/biocactus/internal/learner"
)

const (
	defaultCompactThreshold      = 20
	defaultCompactTokenThreshold = 20000 // ~20k tokens triggers compaction
	defaultKeepRecent            = 6

	fallbackReply   = "I'm having a prickly moment. Give me a second and try again!"
	budgetOverReply = "You've used up today's chat energy. Come back tomorrow to keep growing!"
)

// Completer is the subset of the AI router the engine needs.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
}

// EngineConfig holds dependencies for the tutor engine.
type EngineConfig struct {
	Router                Completer
	Store                 ConversationStore
	Budget                ai.BudgetChecker
	Events                activity.Logger
	CompactThreshold      int // messages before compaction triggers (default 20)
	CompactTokenThreshold int // estimated tokens before compaction triggers (default 20000)
	KeepRecent            int // recent messages to keep after compaction (default 6)
}

// Engine answers learner questions with conversation memory.
type Engine struct {
	router                Completer
	store                 ConversationStore
	budget                ai.BudgetChecker
	events                activity.Logger
	compactThreshold      int
	compactTokenThreshold int
	keepRecent            int
}

// NewEngine creates a tutor engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	events := cfg.Events
	if events == nil {
		events = activity.NopLogger{}
	}
	threshold := cfg.CompactThreshold
	if threshold == 0 {
		threshold = defaultCompactThreshold
	}
	tokenThreshold := cfg.CompactTokenThreshold
	if tokenThreshold == 0 {
		tokenThreshold = defaultCompactTokenThreshold
	}
	keepRecent := cfg.KeepRecent
	if keepRecent == 0 {
		keepRecent = defaultKeepRecent
	}
	return &Engine{
		router:                cfg.Router,
		store:                 store,
		budget:                cfg.Budget,
		events:                events,
		compactThreshold:      threshold,
		compactTokenThreshold: tokenThreshold,
		keepRecent:            keepRecent,
	}
}

// Answer processes one learner message and returns the tutor's reply.
// Failures degrade to a friendly fallback; the chat never surfaces errors.
func (e *Engine) Answer(ctx context.Context, account *learner.Account, languageName, text string) string {
	slog.Info("processing chat message",
		"learner_id", account.ID,
		"text_len", len(text),
	)

	if e.budget != nil {
		ok, err := e.budget.Check(account.ID)
		if err != nil {
			slog.Warn("budget check failed", "error", err)
		} else if !ok {
			return budgetOverReply
		}
	}

	conv, err := e.getOrCreateConversation(ctx, account.ID)
	if err != nil {
		slog.Error("failed to get conversation", "error", err)
		return fallbackReply
	}

	if err := e.store.AddMessage(ctx, conv.ID, StoredMessage{
		Role:    "user",
		Content: text,
	}); err != nil {
		slog.Error("failed to store user message", "error", err)
	}

	// Refresh to get the latest message history.
	conv, _ = e.store.GetConversation(ctx, conv.ID)

	e.maybeCompact(ctx, conv)

	messages := []ai.Message{{Role: "system", Content: e.buildSystemPrompt(account, languageName)}}
	messages = append(messages, e.buildContextMessages(conv)...)

	resp, err := e.router.Complete(ctx, ai.CompletionRequest{
		Messages:  messages,
		Task:      ai.TaskChat,
		MaxTokens: 1024,
	})
	if err != nil {
		slog.Error("AI completion failed", "error", err)
		return fallbackReply
	}

	if e.budget != nil {
		if err := e.budget.Record(account.ID, resp.TotalTokens()); err != nil {
			slog.Warn("budget record failed", "error", err)
		}
	}
	if err := e.events.Log(ctx, activity.Event{
		LearnerID: account.ID,
		EventType: activity.EventChatMessage,
		Data:      map[string]any{"tokens": resp.TotalTokens()},
	}); err != nil {
		slog.Warn("failed to log chat event", "error", err)
	}

	if err := e.store.AddMessage(ctx, conv.ID, StoredMessage{
		Role:         "assistant",
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}); err != nil {
		slog.Error("failed to store assistant message", "error", err)
	}

	return resp.Content
}

// EndSession closes the learner's active conversation, if any.
func (e *Engine) EndSession(ctx context.Context, learnerID string) {
	conv, found, err := e.store.GetActiveConversation(ctx, learnerID)
	if err != nil || !found {
		return
	}
	if err := e.store.EndConversation(ctx, conv.ID); err != nil {
		slog.Error("failed to end conversation", "error", err)
	}
}

// buildContextMessages returns the conversation messages for the AI prompt.
// If a summary exists, it prepends it and only includes messages after the
// compaction point.
func (e *Engine) buildContextMessages(conv *Conversation) []ai.Message {
	var messages []ai.Message

	if conv.Summary != "" {
		messages = append(messages, ai.Message{
			Role:    "user",
			Content: "Previous conversation summary:\n" + conv.Summary,
		})
		messages = append(messages, ai.Message{
			Role:    "assistant",
			Content: "Understood, I'll continue based on our previous conversation.",
		})
		for _, m := range conv.Messages[conv.CompactedAt:] {
			messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
		}
	} else {
		for _, m := range conv.Messages {
			messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
		}
	}

	return messages
}

// estimateTokens gives a rough token count for messages (1 token ~ 4 chars).
func estimateTokens(messages []StoredMessage) int {
	total := 0
	for _, m := range messages {
		total += len(m.Content) / 4
	}
	return total
}

// maybeCompact summarizes older messages when the uncompacted tail grows past
// the message or token threshold.
func (e *Engine) maybeCompact(ctx context.Context, conv *Conversation) {
	uncompacted := conv.Messages[conv.CompactedAt:]
	if len(uncompacted) <= e.compactThreshold && estimateTokens(uncompacted) <= e.compactTokenThreshold {
		return
	}

	compactUpTo := len(conv.Messages) - e.keepRecent
	if compactUpTo <= conv.CompactedAt {
		return
	}

	toSummarize := conv.Messages[conv.CompactedAt:compactUpTo]

	var content strings.Builder
	if conv.Summary != "" {
		content.WriteString("Previous summary:\n")
		content.WriteString(conv.Summary)
		content.WriteString("\n\nNew messages to incorporate:\n")
	}
	for _, m := range toSummarize {
		role := "Student"
		if m.Role == "assistant" {
			role = "Tutor"
		}
		content.WriteString(fmt.Sprintf("%s: %s\n", role, m.Content))
	}

	resp, err := e.router.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: `Summarize this tutoring conversation concisely. Capture:
- Topics discussed and key concepts
- What the student understood or struggled with
- Any examples or explanations worked through
Keep the summary under 150 words. Write in the same language used in the conversation.`},
			{Role: "user", Content: content.String()},
		},
		Task:      ai.TaskChat,
		MaxTokens: 256,
	})
	if err != nil {
		slog.Warn("compaction failed, continuing without summary", "error", err)
		return
	}

	if err := e.store.SetSummary(ctx, conv.ID, resp.Content, compactUpTo); err != nil {
		slog.Warn("failed to save summary", "error", err)
		return
	}

	conv.Summary = resp.Content
	conv.CompactedAt = compactUpTo

	slog.Info("conversation compacted",
		"conversation_id", conv.ID,
		"compacted_messages", compactUpTo,
		"remaining_messages", len(conv.Messages)-compactUpTo,
	)
}

func (e *Engine) getOrCreateConversation(ctx context.Context, learnerID string) (*Conversation, error) {
	conv, found, err := e.store.GetActiveConversation(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	if found {
		return conv, nil
	}
	id, err := e.store.CreateConversation(ctx, Conversation{LearnerID: learnerID})
	if err != nil {
		return nil, err
	}
	return e.store.GetConversation(ctx, id)
}

func (e *Engine) buildSystemPrompt(account *learner.Account, languageName string) string {
	prefs := account.Prefs()
	name := account.DisplayName
	if name == "" {
		name = "the student"
	}

	return fmt.Sprintf(`You are Cacto, a friendly cactus mascot and biology tutor in the BioCactus learning app.

STUDENT: %s, a %s level learner interested in %s.

LANGUAGE: Respond STRICTLY in %s using native script.

TEACHING STYLE:
- Start with what the student knows, build from there
- Use simple, relatable examples and cactus-themed metaphors where they fit
- Break complex processes into small steps
- Celebrate small wins
- If the student is stuck, give a hint before the answer
- Keep responses concise, this is a chat, not a textbook

RULES:
- Never give answers without explanation
- Always check if the student understood before moving on
- If unsure of the student's level, ask a diagnostic question
- Be patient and never condescending`,
		name, prefs.Experience, interestOrDefault(prefs.Interest), languageName)
}

func interestOrDefault(interest string) string {
	if interest == "" {
		return "general biology"
	}
	return interest
}
