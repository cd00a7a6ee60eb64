package mailer

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHTMLMessage(t *testing.T) {
	msg := string(buildHTMLMessage("from@x.io", "to@y.io", "Hello", "<p>body</p>"))

	assert.Contains(t, msg, "From: from@x.io\r\n")
	assert.Contains(t, msg, "To: to@y.io\r\n")
	assert.Contains(t, msg, "Subject: Hello\r\n")
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n")
	assert.True(t, strings.HasSuffix(msg, "<p>body</p>"))
}

func TestBuildMessageWithAttachment(t *testing.T) {
	payload := []byte("%PDF-1.4 fake pdf content that is long enough to wrap across several base64 lines when encoded")

	msg := string(buildMessageWithAttachment("from@x.io", "to@y.io", "Cert", "<p>hi</p>", "Certificate-Go_Meetup.pdf", payload))

	assert.Contains(t, msg, "Content-Type: multipart/mixed;")
	assert.Contains(t, msg, "Content-Type: application/pdf\r\n")
	assert.Contains(t, msg, `filename="Certificate-Go_Meetup.pdf"`)

	// The attachment must decode back to the original bytes.
	start := strings.Index(msg, "Content-Transfer-Encoding: base64")
	require.Positive(t, start)
	section := msg[start:]
	section = section[strings.Index(section, "\r\n\r\n")+4:]
	section = section[:strings.Index(section, "--eventnest-mail-boundary--")]

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(section, "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	// Encoded lines stay within the RFC 2045 limit.
	for _, line := range strings.Split(strings.TrimSpace(section), "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Go_Meetup_2026_", sanitizeFilename("Go Meetup 2026!"))
	assert.Equal(t, "plain", sanitizeFilename("plain"))
}
