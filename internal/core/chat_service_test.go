package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator records every request and answers with reply/err. When block
// is set, Generate signals started and waits for release.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []CompletionRequest
	reply    string
	err      error

	block   bool
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.block {
		f.started <- struct{}{}
		<-f.release
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestChatService(gen Generator) *ChatService {
	return NewChatService(gen, GenerationSettings{MaxOutputTokens: 500, Temperature: 0.75}, zerolog.Nop())
}

func TestStartConversationGreets(t *testing.T) {
	svc := newTestChatService(&fakeGenerator{})
	view := svc.StartConversation()

	require.NotEmpty(t, view.ID)
	require.Len(t, view.Turns, 1)
	assert.Equal(t, RoleAssistant, view.Turns[0].Role)
	assert.Equal(t, greetingMessage, view.Turns[0].Content)
	assert.False(t, view.Pending)

	other := svc.StartConversation()
	assert.NotEqual(t, view.ID, other.ID)
}

func TestPostMessageAppendsReply(t *testing.T) {
	gen := &fakeGenerator{reply: "That sounds really tough."}
	svc := newTestChatService(gen)
	view := svc.StartConversation()

	turn, err := svc.PostMessage(context.Background(), view.ID, "  I feel anxious  ")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Equal(t, "That sounds really tough.", turn.Content)

	require.Equal(t, 1, gen.calls())
	req := gen.requests[0]
	assert.Equal(t, chatSystemInstruction, req.SystemInstruction)
	assert.Equal(t, "You are a compassionate mental health companion. The user says:   I feel anxious  ", req.Prompt)
	assert.Equal(t, int32(500), req.MaxOutputTokens)
	assert.InDelta(t, 0.75, req.Temperature, 1e-6)

	got, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 3)
	assert.Equal(t, Turn{Role: RoleUser, Content: "  I feel anxious  ", CreatedAt: got.Turns[1].CreatedAt}, got.Turns[1])
	assert.Equal(t, RoleAssistant, got.Turns[2].Role)
	assert.False(t, got.Pending)
}

func TestPostMessageRejectsBlankInput(t *testing.T) {
	gen := &fakeGenerator{reply: "hi"}
	svc := newTestChatService(gen)
	view := svc.StartConversation()

	for _, input := range []string{"", " ", "\n\t  "} {
		_, err := svc.PostMessage(context.Background(), view.ID, input)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Zero(t, gen.calls())
	got, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)
}

func TestPostMessageEmptyReplyFallsBack(t *testing.T) {
	svc := newTestChatService(&fakeGenerator{reply: ""})
	view := svc.StartConversation()

	turn, err := svc.PostMessage(context.Background(), view.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, emptyReply, turn.Content)
}

func TestPostMessageFailureBecomesApology(t *testing.T) {
	svc := newTestChatService(&fakeGenerator{err: errors.New("upstream 503")})
	view := svc.StartConversation()

	turn, err := svc.PostMessage(context.Background(), view.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, RoleAssistant, turn.Role)
	assert.Equal(t, failureReply, turn.Content)

	got, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	assert.False(t, got.Pending, "input is re-enabled after a failure")
	assert.Len(t, got.Turns, 3)

	// a second submission is accepted once the first resolved
	_, err = svc.PostMessage(context.Background(), view.ID, "again")
	assert.NoError(t, err)
}

func TestPostMessageRejectsWhileInFlight(t *testing.T) {
	gen := &fakeGenerator{
		reply:   "I'm here.",
		block:   true,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	svc := newTestChatService(gen)
	view := svc.StartConversation()

	done := make(chan error, 1)
	go func() {
		_, err := svc.PostMessage(context.Background(), view.ID, "first")
		done <- err
	}()
	<-gen.started

	pending, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	assert.True(t, pending.Pending)
	assert.Len(t, pending.Turns, 2)

	_, err = svc.PostMessage(context.Background(), view.ID, "second")
	assert.ErrorIs(t, err, ErrRequestInFlight)

	close(gen.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, gen.calls())

	got, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	require.Len(t, got.Turns, 3)
	assert.Equal(t, "first", got.Turns[1].Content)
	assert.Equal(t, "I'm here.", got.Turns[2].Content)
}

func TestPostMessageIgnoresCallerCancellation(t *testing.T) {
	gen := &fakeGenerator{reply: "still here"}
	svc := newTestChatService(gen)
	view := svc.StartConversation()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	turn, err := svc.PostMessage(ctx, view.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, "still here", turn.Content)
}

func TestConversationsAreIndependent(t *testing.T) {
	gen := &fakeGenerator{
		reply:   "ok",
		block:   true,
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	svc := newTestChatService(gen)
	a := svc.StartConversation()
	b := svc.StartConversation()

	var wg sync.WaitGroup
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.PostMessage(context.Background(), id, "hi")
			assert.NoError(t, err)
		}(id)
	}
	<-gen.started
	<-gen.started
	close(gen.release)
	wg.Wait()

	assert.Equal(t, 2, gen.calls())
}

func TestUnknownConversation(t *testing.T) {
	gen := &fakeGenerator{}
	svc := newTestChatService(gen)

	_, err := svc.GetConversation("missing")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.PostMessage(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Zero(t, gen.calls())

	assert.ErrorIs(t, svc.EndConversation("missing"), ErrConversationNotFound)
}

func TestEndConversation(t *testing.T) {
	svc := newTestChatService(&fakeGenerator{})
	view := svc.StartConversation()

	require.NoError(t, svc.EndConversation(view.ID))
	_, err := svc.GetConversation(view.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestConversationViewIsACopy(t *testing.T) {
	svc := newTestChatService(&fakeGenerator{})
	view := svc.StartConversation()
	view.Turns[0].Content = "mutated"

	got, err := svc.GetConversation(view.ID)
	require.NoError(t, err)
	assert.Equal(t, greetingMessage, got.Turns[0].Content)
}

func TestNewChatServiceDefaultsTokens(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc := NewChatService(gen, GenerationSettings{}, zerolog.Nop())
	view := svc.StartConversation()

	_, err := svc.PostMessage(context.Background(), view.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxOutputTokens, gen.requests[0].MaxOutputTokens)
}

func TestIdleConversationsExpire(t *testing.T) {
	svc := NewChatService(&fakeGenerator{reply: "ok"}, GenerationSettings{IdleTTL: time.Hour}, zerolog.Nop())
	now := time.Now()
	svc.now = func() time.Time { return now }

	stale := svc.StartConversation()
	active := svc.StartConversation()

	now = now.Add(50 * time.Minute)
	_, err := svc.PostMessage(context.Background(), active.ID, "still here")
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	fresh := svc.StartConversation()

	_, err = svc.GetConversation(stale.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
	_, err = svc.GetConversation(active.ID)
	assert.NoError(t, err, "recent activity keeps a transcript")
	_, err = svc.GetConversation(fresh.ID)
	assert.NoError(t, err)
}

func TestPendingConversationSurvivesSweep(t *testing.T) {
	gen := &fakeGenerator{reply: "ok", block: true, started: make(chan struct{}), release: make(chan struct{})}
	svc := NewChatService(gen, GenerationSettings{IdleTTL: time.Hour}, zerolog.Nop())
	var mu sync.Mutex
	now := time.Now()
	svc.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	view := svc.StartConversation()
	done := make(chan error, 1)
	go func() {
		_, err := svc.PostMessage(context.Background(), view.ID, "hello")
		done <- err
	}()
	<-gen.started

	mu.Lock()
	now = now.Add(3 * time.Hour)
	mu.Unlock()
	svc.StartConversation()

	_, err := svc.GetConversation(view.ID)
	assert.NoError(t, err)

	close(gen.release)
	require.NoError(t, <-done)
}
