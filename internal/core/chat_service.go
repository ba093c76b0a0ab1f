package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	greetingMessage = "Hi! I'm your mental health companion. How can I help you today?"
	emptyReply      = "I'm here to listen. Would you like to tell me more?"
	failureReply    = "I'm having trouble responding right now. Please try again in a moment."

	chatSystemInstruction = "You are a supportive and empathetic mental health companion. " +
		"Provide caring responses while maintaining appropriate boundaries. " +
		"Never give medical advice, and encourage professional help when appropriate."

	chatPromptPrefix = "You are a compassionate mental health companion. The user says: "

	DefaultMaxOutputTokens int32   = 500
	DefaultTemperature     float32 = 0.75

	// DefaultConversationIdleTTL is how long an untouched transcript is kept.
	DefaultConversationIdleTTL = 24 * time.Hour
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationView is a point-in-time copy of a transcript.
type ConversationView struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
}

type conversation struct {
	id        string
	createdAt time.Time

	mu         sync.Mutex
	turns      []Turn
	pending    bool
	lastActive time.Time
}

func (c *conversation) idleSince(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.pending && c.lastActive.Before(cutoff)
}

func (c *conversation) view() ConversationView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConversationView{
		ID:        c.id,
		Turns:     append([]Turn(nil), c.turns...),
		Pending:   c.pending,
		CreatedAt: c.createdAt,
	}
}

type GenerationSettings struct {
	MaxOutputTokens int32
	Temperature     float32
	// IdleTTL drops transcripts nobody has touched for this long. Zero means
	// DefaultConversationIdleTTL.
	IdleTTL time.Duration
}

// ChatService keeps every transcript in memory. Nothing survives a restart.
type ChatService struct {
	llm      Generator
	settings GenerationSettings
	logger   zerolog.Logger
	now      func() time.Time

	mu            sync.RWMutex
	conversations map[string]*conversation
	lastSweep     time.Time
}

func NewChatService(llm Generator, settings GenerationSettings, logger zerolog.Logger) *ChatService {
	if settings.MaxOutputTokens <= 0 {
		settings.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if settings.IdleTTL <= 0 {
		settings.IdleTTL = DefaultConversationIdleTTL
	}
	return &ChatService{
		llm:           llm,
		settings:      settings,
		logger:        logger.With().Str("component", "chat").Logger(),
		now:           time.Now,
		conversations: make(map[string]*conversation),
	}
}

// StartConversation opens a transcript holding only the greeting. Idle
// transcripts are swept here, at most once per IdleTTL.
func (s *ChatService) StartConversation() ConversationView {
	now := s.now()
	c := &conversation{
		id:         uuid.NewString(),
		createdAt:  now,
		turns:      []Turn{{Role: RoleAssistant, Content: greetingMessage, CreatedAt: now}},
		lastActive: now,
	}

	s.mu.Lock()
	if now.Sub(s.lastSweep) > s.settings.IdleTTL {
		s.sweepLocked(now.Add(-s.settings.IdleTTL))
		s.lastSweep = now
	}
	s.conversations[c.id] = c
	s.mu.Unlock()

	s.logger.Debug().Str("conversation_id", c.id).Msg("Conversation started")
	return c.view()
}

func (s *ChatService) GetConversation(id string) (ConversationView, error) {
	c, err := s.lookup(id)
	if err != nil {
		return ConversationView{}, err
	}
	return c.view(), nil
}

func (s *ChatService) EndConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return ErrConversationNotFound
	}
	delete(s.conversations, id)
	return nil
}

// PostMessage appends the user's turn, asks the model for exactly one reply
// and appends it. Generation failures become the apology turn instead of an
// error. The call is detached from ctx cancellation and carries no timeout.
func (s *ChatService) PostMessage(ctx context.Context, id, content string) (Turn, error) {
	if strings.TrimSpace(content) == "" {
		return Turn{}, ErrEmptyMessage
	}
	c, err := s.lookup(id)
	if err != nil {
		return Turn{}, err
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Turn{}, ErrRequestInFlight
	}
	c.lastActive = s.now()
	c.turns = append(c.turns, Turn{Role: RoleUser, Content: content, CreatedAt: c.lastActive})
	c.pending = true
	c.mu.Unlock()

	reply := s.generateReply(context.WithoutCancel(ctx), id, content)

	c.mu.Lock()
	defer c.mu.Unlock()
	turn := Turn{Role: RoleAssistant, Content: reply, CreatedAt: s.now()}
	c.turns = append(c.turns, turn)
	c.pending = false
	c.lastActive = turn.CreatedAt
	return turn, nil
}

func (s *ChatService) generateReply(ctx context.Context, id, content string) string {
	text, err := s.llm.Generate(ctx, CompletionRequest{
		SystemInstruction: chatSystemInstruction,
		Prompt:            chatPromptPrefix + content,
		MaxOutputTokens:   s.settings.MaxOutputTokens,
		Temperature:       s.settings.Temperature,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", id).Msg("Error generating reply")
		return failureReply
	}
	if text == "" {
		return emptyReply
	}
	return text
}

// sweepLocked drops idle transcripts. A pending one is never dropped. Caller
// holds s.mu.
func (s *ChatService) sweepLocked(cutoff time.Time) {
	for id, c := range s.conversations {
		if c.idleSince(cutoff) {
			delete(s.conversations, id)
			s.logger.Debug().Str("conversation_id", id).Msg("Idle conversation dropped")
		}
	}
}

func (s *ChatService) lookup(id string) (*conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return c, nil
}
