package identity_test

import (
	"testing"
	"time"

	"github.com/cursive-id/browserid/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAttributes(t *testing.T) {
	id := identity.New()
	id.SetAttribute(identity.AttrEmail, "user@example.com")

	v, ok := id.Attribute(identity.AttrEmail)
	require.True(t, ok)
	assert.Equal(t, "user@example.com", v)
	assert.Equal(t, "user@example.com", id.Email())
}

func TestPrivateAttributesNotExposed(t *testing.T) {
	id := identity.New()
	id.SetReauthTicket([]byte("ark-bytes"), time.Now().Add(time.Hour), "ticket-id")

	_, ok := id.Attribute("ark")
	assert.False(t, ok)
	assert.False(t, id.HasAttribute("tkt"))

	ark, exp, ticket, ok := id.ReauthTicket()
	require.True(t, ok)
	assert.Equal(t, []byte("ark-bytes"), ark)
	assert.Equal(t, "ticket-id", ticket)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Second)
}

func TestSetAttributePanicsOnPrivateName(t *testing.T) {
	id := identity.New()
	assert.Panics(t, func() {
		id.SetAttribute("ark", []byte("nope"))
	})
}

func TestReleaseZeroizesSecrets(t *testing.T) {
	id := identity.New()
	ark := []byte("sensitive-root-key-material")
	id.SetReauthTicket(ark, time.Now().Add(time.Hour), "ticket-id")
	id.SetSessionKey([]byte("sensitive-session-key"))

	id.Release()

	for _, b := range ark {
		assert.Zero(t, b)
	}
}
