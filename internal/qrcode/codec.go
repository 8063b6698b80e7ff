package qrcode

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	qrc "github.com/skip2/go-qrcode"
)

const (
	// MaxAge bounds how long a rendered QR image stays scannable. Entry
	// validity is governed by ticket status; this limits the blast radius
	// of a leaked image.
	MaxAge = time.Hour

	imageSize = 300
)

var ErrMalformedToken = errors.New("malformed QR token")

// Payload is the signed structure embedded in a ticket's QR code. It is
// serialized once at issuance and stored verbatim; field order and names
// must stay stable.
type Payload struct {
	TicketID  string `json:"ticketId"`
	UserID    string `json:"userId"`
	EventID   string `json:"eventId"`
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
}

// Codec issues and validates signed entry tokens.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// NewCodecWithClock is used by tests to control freshness checks.
func NewCodecWithClock(secret string, now func() time.Time) *Codec {
	return &Codec{secret: []byte(secret), now: now}
}

func (c *Codec) Issue(ticketID, userID, eventID string) Payload {
	ts := c.now().UnixMilli()
	return Payload{
		TicketID:  ticketID,
		UserID:    userID,
		EventID:   eventID,
		Timestamp: ts,
		Signature: c.sign(ticketID, userID, eventID, ts),
	}
}

// Verify recomputes the MAC in constant time and rejects stale tokens.
func (c *Codec) Verify(p Payload) bool {
	expected := c.sign(p.TicketID, p.UserID, p.EventID, p.Timestamp)
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return false
	}

	age := c.now().Sub(time.UnixMilli(p.Timestamp))
	return age <= MaxAge
}

func (c *Codec) Parse(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, ErrMalformedToken
	}
	if p.TicketID == "" || p.UserID == "" || p.EventID == "" || p.Signature == "" {
		return Payload{}, ErrMalformedToken
	}
	return p, nil
}

// Render produces a scannable PNG of the serialized payload.
func (c *Codec) Render(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	png, err := qrc.Encode(string(raw), qrc.High, imageSize)
	if err != nil {
		return nil, fmt.Errorf("render QR image: %w", err)
	}
	return png, nil
}

// Serialize returns the exact string stored on the ticket row.
func (c *Codec) Serialize(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(raw), nil
}

func (c *Codec) sign(ticketID, userID, eventID string, ts int64) string {
	mac := hmac.New(sha256.New, c.secret)
	fmt.Fprintf(mac, "%s-%s-%s-%d", ticketID, userID, eventID, ts)
	return hex.EncodeToString(mac.Sum(nil))
}
