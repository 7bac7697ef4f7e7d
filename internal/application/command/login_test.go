package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-presence/internal/domain/operator"
	"github.com/campus-hub/campus-presence/internal/domain/session"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
)

// fakeOperatorRepo is an in-memory operator.Repository.
type fakeOperatorRepo struct {
	operators map[string]operator.Operator
}

func (f *fakeOperatorRepo) Create(ctx context.Context, o operator.Operator) error {
	if f.operators == nil {
		f.operators = make(map[string]operator.Operator)
	}
	f.operators[o.Username] = o
	return nil
}

func (f *fakeOperatorRepo) GetByUsername(ctx context.Context, username string) (operator.Operator, error) {
	o, ok := f.operators[username]
	if !ok {
		return operator.Operator{}, shared.ErrOperatorNotFound
	}
	return o, nil
}

// fakeSessionRepo is an in-memory session.Repository.
type fakeSessionRepo struct {
	sessions map[string]session.Session
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]session.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s session.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (session.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return session.Session{}, shared.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) UpdateExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	s, ok := f.sessions[id]
	if !ok {
		return shared.ErrSessionNotFound
	}
	s.ExpiresAt = expiresAt
	f.sessions[id] = s
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	delete(f.sessions, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func mustOperator(t *testing.T, username, password, building string) operator.Operator {
	t.Helper()
	op, err := operator.New(username, password, building)
	require.NoError(t, err)
	return op
}

func TestLoginHandler_IssuesSession(t *testing.T) {
	op := mustOperator(t, "frontdesk", "hunter2secret", "Library")
	operators := &fakeOperatorRepo{operators: map[string]operator.Operator{op.Username: op}}
	sessions := newFakeSessionRepo()

	handler := NewLoginHandler(operators, sessions, nil, time.Hour, nil)

	result, err := handler.Handle(context.Background(), LoginCommand{Username: "frontdesk", Password: "hunter2secret"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, session.TokenID(result.Token), result.Session.ID, "only the token digest is stored")
	assert.Equal(t, "frontdesk", result.Session.Username)
	assert.Equal(t, "Library", result.Session.Building)
	assert.Equal(t, op.ID, result.Session.OperatorID)

	stored, err := sessions.GetByID(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	op := mustOperator(t, "frontdesk", "hunter2secret", "Library")
	operators := &fakeOperatorRepo{operators: map[string]operator.Operator{op.Username: op}}
	sessions := newFakeSessionRepo()

	handler := NewLoginHandler(operators, sessions, nil, time.Hour, nil)

	_, err := handler.Handle(context.Background(), LoginCommand{Username: "frontdesk", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, shared.IsUnauthorized(err))
	assert.Empty(t, sessions.sessions)
}

func TestLoginHandler_UnknownUsername(t *testing.T) {
	handler := NewLoginHandler(&fakeOperatorRepo{}, newFakeSessionRepo(), nil, time.Hour, nil)

	_, err := handler.Handle(context.Background(), LoginCommand{Username: "ghost", Password: "whatever"})
	require.Error(t, err)

	// Unknown usernames and wrong passwords are indistinguishable to callers.
	assert.True(t, shared.IsUnauthorized(err))
	assert.False(t, shared.IsNotFound(err))
}

func TestLogoutHandler_DeletesSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	token, err := session.GenerateToken()
	require.NoError(t, err)
	id := session.TokenID(token)
	sessions.sessions[id] = session.Session{ID: id, Username: "frontdesk", ExpiresAt: time.Now().Add(time.Hour)}

	handler := NewLogoutHandler(sessions, nil, nil)
	require.NoError(t, handler.Handle(context.Background(), LogoutCommand{Token: token}))

	assert.Empty(t, sessions.sessions)
	assert.Equal(t, []string{id}, sessions.deleted)
}
