package respond

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cadenza-ai/mentor/ai"
	"github.com/cadenza-ai/mentor/core"
	"github.com/cadenza-ai/mentor/retrieval"
	"github.com/cadenza-ai/mentor/session"
)

const (
	defaultTopK           = 3
	defaultThreshold      = 0.6
	defaultMaxTokens      = 512
	defaultTemperature    = 0.1
	defaultHistoryWindow  = 5
	defaultRequestTimeout = 60 * time.Second
)

// Responder turns user messages into grounded chat answers.
type Responder struct {
	sessions *session.Store
	engine   *retrieval.Engine
	chat     ai.ChatModel

	topK           int
	threshold      float32
	maxTokens      int
	temperature    float64
	historyWindow  int
	requestTimeout time.Duration

	logger *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRetrievalPolicy sets how many knowledge records to retrieve and the
// minimum similarity they must reach. Defaults are 3 and 0.6.
func WithRetrievalPolicy(topK int, threshold float32) Option {
	return func(r *Responder) error {
		if topK <= 0 {
			return retrieval.ErrInvalidTopK
		}
		if threshold < -1 || threshold > 1 {
			return retrieval.ErrInvalidThreshold
		}
		r.topK = topK
		r.threshold = threshold
		return nil
	}
}

// WithGeneration sets the chat model token budget and temperature.
// Defaults are 512 and 0.1.
func WithGeneration(maxTokens int, temperature float64) Option {
	return func(r *Responder) error {
		r.maxTokens = maxTokens
		r.temperature = temperature
		return nil
	}
}

// WithHistoryWindow sets how many recent turns go into the prompt.
// Default is 5.
func WithHistoryWindow(turns int) Option {
	return func(r *Responder) error {
		if turns < 1 {
			turns = 1
		}
		r.historyWindow = turns
		return nil
	}
}

// WithRequestTimeout bounds a single chat model call.
// Default is 60s.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(r *Responder) error {
		if timeout > 0 {
			r.requestTimeout = timeout
		}
		return nil
	}
}

// NewResponder creates a new responder.
func NewResponder(sessions *session.Store, engine *retrieval.Engine, chat ai.ChatModel, opts ...Option) (*Responder, error) {
	if sessions == nil {
		return nil, ErrSessionStoreRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if chat == nil {
		return nil, ErrChatModelRequired
	}

	r := &Responder{
		sessions:       sessions,
		engine:         engine,
		chat:           chat,
		topK:           defaultTopK,
		threshold:      defaultThreshold,
		maxTokens:      defaultMaxTokens,
		temperature:    defaultTemperature,
		historyWindow:  defaultHistoryWindow,
		requestTimeout: defaultRequestTimeout,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Welcome returns the static greeting shown when a chat is opened.
func (r *Responder) Welcome() string {
	return welcomeMessage
}

// Respond answers a user message within a session.
//
// The user turn is always persisted. A retrieval failure degrades to the
// fallback prompt rather than failing the request. A chat model failure
// returns the apology and persists no assistant turn. Only session store
// failures surface as errors.
func (r *Responder) Respond(ctx context.Context, sessionID, userMessage string) (string, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", ErrEmptyMessage
	}

	// Window is read before the append so the prompt does not repeat the
	// current message inside the history block.
	history, err := r.sessions.HistoryWindow(ctx, sessionID, r.historyWindow)
	if err != nil {
		return "", err
	}

	if err := r.sessions.AppendTurn(ctx, sessionID, &core.ConversationTurn{
		Speaker:   core.SpeakerUser,
		Text:      userMessage,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	results, err := r.engine.Retrieve(ctx, userMessage, r.topK, r.threshold)
	if err != nil {
		// Index trouble must not take the chat down
		r.logger.Warn("retrieval failed, answering without grounding",
			"sessionId", sessionID, "error", err)
		results = nil
	}

	var prompt string
	if len(results) > 0 {
		prompt = BuildGroundedPrompt(results, history, userMessage)
	} else {
		prompt = BuildFallbackPrompt(history, userMessage)
	}

	genCtx, cancel := context.WithTimeout(ctx, r.requestTimeout)
	defer cancel()

	answer, err := r.chat.Generate(genCtx, prompt, r.maxTokens, r.temperature)
	if err != nil {
		r.logger.Error("chat model failed", "sessionId", sessionID, "error", err)
		return apologyMessage, nil
	}
	answer = cleanAnswer(answer)
	if answer == "" {
		r.logger.Error("chat model returned empty answer", "sessionId", sessionID)
		return apologyMessage, nil
	}

	if err := r.sessions.AppendTurn(ctx, sessionID, &core.ConversationTurn{
		Speaker:   core.SpeakerAssistant,
		Text:      answer,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		// The answer already exists; losing one history turn is logged,
		// not surfaced
		r.logger.Error("failed to persist assistant turn",
			"sessionId", sessionID, "error", err)
	}

	return answer, nil
}

// cleanAnswer trims the answer and cuts off any continuation where the
// model starts speaking for the user.
func cleanAnswer(answer string) string {
	if idx := strings.Index(answer, "\nUser:"); idx >= 0 {
		answer = answer[:idx]
	}
	return strings.TrimSpace(answer)
}
