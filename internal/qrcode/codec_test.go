package qrcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := NewCodec("test-secret")

	p := c.Issue("ticket-1", "user-1", "event-1")

	assert.Equal(t, "ticket-1", p.TicketID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "event-1", p.EventID)
	assert.NotEmpty(t, p.Signature)
	assert.True(t, c.Verify(p))
}

func TestVerify_TamperedFields(t *testing.T) {
	c := NewCodec("test-secret")
	base := c.Issue("ticket-1", "user-1", "event-1")

	tampered := base
	tampered.TicketID = "ticket-2"
	assert.False(t, c.Verify(tampered))

	tampered = base
	tampered.UserID = "user-2"
	assert.False(t, c.Verify(tampered))

	tampered = base
	tampered.EventID = "event-2"
	assert.False(t, c.Verify(tampered))

	tampered = base
	tampered.Timestamp++
	assert.False(t, c.Verify(tampered))

	tampered = base
	tampered.Signature = "deadbeef"
	assert.False(t, c.Verify(tampered))
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewCodec("secret-a")
	verifier := NewCodec("secret-b")

	p := issuer.Issue("ticket-1", "user-1", "event-1")
	assert.False(t, verifier.Verify(p))
}

func TestVerify_StaleToken(t *testing.T) {
	now := time.Now()
	c := NewCodecWithClock("test-secret", func() time.Time { return now })

	p := c.Issue("ticket-1", "user-1", "event-1")
	assert.True(t, c.Verify(p))

	// advance the clock past the freshness bound
	c.now = func() time.Time { return now.Add(MaxAge + time.Minute) }
	assert.False(t, c.Verify(p))
}

func TestParse_RoundTrip(t *testing.T) {
	c := NewCodec("test-secret")
	issued := c.Issue("ticket-1", "user-1", "event-1")

	raw, err := c.Serialize(issued)
	require.NoError(t, err)

	parsed, err := c.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, issued, parsed)
	assert.True(t, c.Verify(parsed))
}

func TestParse_Malformed(t *testing.T) {
	c := NewCodec("test-secret")

	_, err := c.Parse("not json at all")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = c.Parse(`{"ticketId":"t1"}`)
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = c.Parse("")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestRender_ProducesPNG(t *testing.T) {
	c := NewCodec("test-secret")
	p := c.Issue("ticket-1", "user-1", "event-1")

	png, err := c.Render(p)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, png[:4])
}
