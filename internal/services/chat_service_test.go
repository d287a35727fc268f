package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/services"
)

func TestChat_Conversations(t *testing.T) {
	e := newEnv(t)

	convs, err := e.chat.Conversations(e.user(t, "client-1"))
	require.NoError(t, err)
	require.Len(t, convs, 3, "message partner plus appointment providers")
	assert.Equal(t, "provider-1", convs[0].UserID)
	assert.Equal(t, "Sarah Johnson", convs[0].Name)
	assert.Equal(t, 1, convs[0].Unread)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "msg-4", convs[0].LastMessage.ID)
	assert.Nil(t, convs[1].LastMessage)

	inbox, err := e.chat.Conversations(e.user(t, "provider-1"))
	require.NoError(t, err)
	require.NotEmpty(t, inbox)
	assert.Equal(t, "client-2", inbox[0].UserID, "latest message first")
}

func TestChat_ViewMarksRead(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "client-1")

	v, err := e.chat.View(client, "provider-1")
	require.NoError(t, err)
	require.Len(t, v.Messages, 4)
	assert.Equal(t, "msg-1", v.Messages[0].ID)
	require.NotNil(t, v.Active)
	assert.Zero(t, v.Active.Unread)

	_, err = e.chat.View(client, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestChat_Send(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "client-1")

	var fe services.FieldErrors
	_, err := e.chat.Send(client, "provider-1", "   ")
	assert.ErrorAs(t, err, &fe)
	_, err = e.chat.Send(client, "provider-1", strings.Repeat("a", 1001))
	assert.ErrorAs(t, err, &fe)
	_, err = e.chat.Send(client, "client-1", "hi me")
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = e.chat.Send(client, "ghost", "hello?")
	assert.ErrorIs(t, err, services.ErrNotFound)

	m, err := e.chat.Send(client, "provider-1", " Tuesday at 2 works! ")
	require.NoError(t, err)
	assert.Equal(t, "Tuesday at 2 works!", m.Body)
	assert.NotEmpty(t, m.ID)

	thread, err := e.msgs.Thread("client-1", "provider-1")
	require.NoError(t, err)
	require.Len(t, thread, 5)
	assert.Equal(t, m.ID, thread[4].ID)

	convs, err := e.chat.Conversations(e.user(t, "provider-1"))
	require.NoError(t, err)
	assert.Equal(t, "client-1", convs[0].UserID)
	assert.Equal(t, 1, convs[0].Unread)
}
