package qr

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTicket(t *testing.T) {
	enc := NewEncoder()

	out, err := enc.EncodeTicket(Payload{
		TicketCode:     "3f6c9e1a",
		EventID:        10,
		UserID:         1,
		RegistrationID: 5,
	})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(out, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
	require.NoError(t, err)

	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4])
}

func TestEncodeTicketDeterministic(t *testing.T) {
	enc := NewEncoder()
	p := Payload{TicketCode: "abc", EventID: 1, UserID: 2, RegistrationID: 3}

	a, err := enc.EncodeTicket(p)
	require.NoError(t, err)
	b, err := enc.EncodeTicket(p)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
