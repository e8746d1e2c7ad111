package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brdocs/docket/internal/domain"
)

func courtContexts() []domain.OperatingContext {
	return []domain.OperatingContext{
		{Index: 0, Name: "Judge", Organ: "1st Criminal Court"},
		{Index: 1, Name: "Clerk", Organ: "2nd Civil Court", Role: "Filing Desk"},
		{Index: 2, Name: "Clerk", Organ: "Small Claims"},
	}
}

func TestContextSelectBySubstring(t *testing.T) {
	gateway := &mockContextGateway{contexts: courtContexts()}
	prober := &mockProber{user: domain.PortalUser{ID: 3, ContextID: 501}}
	store := &mockSessionStore{}

	svc := NewContextService(gateway, prober, store)

	sess := &domain.Session{}
	selected, err := svc.Select(context.Background(), sess, "2nd civil")

	require.NoError(t, err)
	assert.Equal(t, 1, selected.Index)
	require.NotNil(t, gateway.selected)
	assert.Equal(t, 1, gateway.selected.Index)
	require.NotNil(t, sess.Context)
	assert.Equal(t, "Clerk / 2nd Civil Court / Filing Desk", sess.Context.FullName())
	require.NotNil(t, sess.User)
	assert.Equal(t, int64(501), sess.User.ContextID)
	assert.NotNil(t, store.saved)
}

func TestContextSelectExactBeatsSubstring(t *testing.T) {
	contexts := []domain.OperatingContext{
		{Index: 0, Name: "Clerk of Records"},
		{Index: 1, Name: "Clerk"},
	}
	gateway := &mockContextGateway{contexts: contexts}
	svc := NewContextService(gateway, &mockProber{}, &mockSessionStore{})

	selected, err := svc.Select(context.Background(), &domain.Session{}, "clerk")

	require.NoError(t, err)
	assert.Equal(t, 1, selected.Index)
}

func TestContextSelectSkipsActiveContext(t *testing.T) {
	gateway := &mockContextGateway{contexts: courtContexts()}
	active := domain.OperatingContext{Index: 1, Name: "Clerk", Organ: "2nd Civil Court", Role: "Filing Desk"}
	svc := NewContextService(gateway, &mockProber{}, &mockSessionStore{})

	sess := &domain.Session{Context: &active}
	selected, err := svc.Select(context.Background(), sess, "2nd civil")

	require.NoError(t, err)
	assert.Equal(t, 1, selected.Index)
	assert.Nil(t, gateway.selected)
}

func TestContextSelectNotFound(t *testing.T) {
	gateway := &mockContextGateway{contexts: courtContexts()}
	svc := NewContextService(gateway, &mockProber{}, &mockSessionStore{})

	_, err := svc.Select(context.Background(), &domain.Session{}, "nonexistent role xyz")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContextNotFound)
	assert.Nil(t, gateway.selected)
}

func TestContextListPassesThrough(t *testing.T) {
	gateway := &mockContextGateway{contexts: courtContexts()}
	svc := NewContextService(gateway, &mockProber{}, &mockSessionStore{})

	contexts, err := svc.List(context.Background(), &domain.Session{})

	require.NoError(t, err)
	assert.Len(t, contexts, 3)
}
