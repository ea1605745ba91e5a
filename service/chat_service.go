package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tieubaoca/sheetchat-be/types"
)

// ChatService owns per-session state: the conversation log and the active
// document key. Questions within one session are strictly ordered: a new
// question does not start until the previous answer has fully drained into
// the log. The conversation's lifecycle is independent from the engine
// cache: clearing one never touches the other.
type ChatService struct {
	cache          *EngineCache
	requestTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu        sync.Mutex
	messages  []types.Message
	activeDoc string
}

func NewChatService(cache *EngineCache, requestTimeout time.Duration) *ChatService {
	return &ChatService{
		cache:          cache,
		requestTimeout: requestTimeout,
		sessions:       make(map[string]*sessionState),
	}
}

func (s *ChatService) session(sessionID string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		state = &sessionState{}
		s.sessions[sessionID] = state
	}
	return state
}

// SetActiveDocument routes the session's next questions to the given
// document key. Queries always target the active document explicitly, never
// whichever cache entry map iteration yields first.
func (s *ChatService) SetActiveDocument(sessionID, key string) {
	state := s.session(sessionID)
	state.mu.Lock()
	state.activeDoc = key
	state.mu.Unlock()
}

func (s *ChatService) ActiveDocument(sessionID string) string {
	state := s.session(sessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.activeDoc
}

// Ask answers a question from the session's active document, invoking
// onFragment for each visible fragment as it arrives. On success the user
// and assistant turns are appended to the conversation; on any failure
// nothing is appended, partial output included.
func (s *ChatService) Ask(ctx context.Context, sessionID, query string, onFragment types.StreamHandler) (string, error) {
	state := s.session(sessionID)
	state.mu.Lock()
	defer state.mu.Unlock()

	if state.activeDoc == "" {
		return "", types.ErrEngineNotReady
	}
	engine, ok := s.cache.Get(state.activeDoc)
	if !ok {
		return "", types.ErrEngineNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	stream, err := engine.Ask(ctx, query)
	if err != nil {
		return "", mapTimeout(ctx, err)
	}
	defer stream.Close()

	var answer strings.Builder
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Discard anything already streamed; a truncated answer must
			// not enter the conversation.
			return "", mapTimeout(ctx, err)
		}
		answer.WriteString(frag)
		if onFragment != nil {
			onFragment(frag)
		}
	}

	state.messages = append(state.messages,
		types.Message{Role: types.RoleUser, Content: query},
		types.Message{Role: types.RoleAssistant, Content: answer.String()},
	)
	return answer.String(), nil
}

func mapTimeout(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", types.ErrGenerationTimeout, err)
	}
	return err
}

// History returns a copy of the session's conversation in turn order.
func (s *ChatService) History(sessionID string) []types.Message {
	state := s.session(sessionID)
	state.mu.Lock()
	defer state.mu.Unlock()
	messages := make([]types.Message, len(state.messages))
	copy(messages, state.messages)
	return messages
}

// ClearConversation resets the chat history only; the session's cached
// engines and their indices survive.
func (s *ChatService) ClearConversation(sessionID string) {
	state := s.session(sessionID)
	state.mu.Lock()
	state.messages = nil
	state.mu.Unlock()
}

// EndSession forgets the session entirely: conversation, active document
// and all cached engines for the session.
func (s *ChatService) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	s.cache.Clear(sessionID)
}
