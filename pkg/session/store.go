// Package session maintains the authenticated identity for a client
// process: the persisted token, the resolved user, and change
// notifications for anything rendering authentication state.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/noah-isme/classwork-go/internal/dto"
	"github.com/noah-isme/classwork-go/pkg/apiclient"
)

// TokenStore persists the bearer token across process restarts.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// State is a snapshot of the session at one point in time.
type State struct {
	User            *dto.UserResponse
	Token           string
	IsAuthenticated bool
	Loading         bool
}

// Store owns the session lifecycle. All methods are safe for concurrent
// use; subscribers are notified after every state change.
type Store struct {
	api    *apiclient.Client
	tokens TokenStore

	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextSubID   int
}

// New creates a session store backed by the given API client and token
// persistence.
func New(api *apiclient.Client, tokens TokenStore) *Store {
	return &Store{
		api:         api,
		tokens:      tokens,
		state:       State{Loading: true},
		subscribers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every state change and returns an
// unsubscribe function. fn is called outside the store lock.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Init revalidates any persisted token against the API. A token that no
// longer resolves to a user is discarded silently; Init only returns an
// error when the token store itself fails.
func (s *Store) Init(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		s.setState(State{})
		return err
	}

	if token == "" {
		s.setState(State{})
		return nil
	}

	s.api.SetToken(token)
	user, err := s.api.Me(ctx)
	if err != nil {
		// Expired or revoked token: drop it and start signed out.
		s.api.ClearToken()
		_ = s.tokens.Clear()
		s.setState(State{})
		return nil
	}

	s.setState(State{User: &user, Token: token, IsAuthenticated: true})
	return nil
}

// Login authenticates with the API, persists the token, and publishes
// the signed-in state. The returned error carries the server's message
// when the API rejected the credentials.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.Message != "" {
			return errors.New(apiErr.Message)
		}
		return errors.New("Login failed")
	}

	s.api.SetToken(resp.Token)
	if err := s.tokens.Save(resp.Token); err != nil {
		return err
	}

	user := resp.User
	s.setState(State{User: &user, Token: resp.Token, IsAuthenticated: true})
	return nil
}

// Logout drops the token and identity immediately. It never fails from
// the caller's perspective; persistence errors only affect the next
// process start.
func (s *Store) Logout() {
	s.api.ClearToken()
	_ = s.tokens.Clear()
	s.setState(State{})
}

func (s *Store) setState(state State) {
	s.mu.Lock()
	s.state = state
	listeners := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
