// Package qr encodes check-in ticket payloads as QR code data URLs, the form
// that embeds directly into confirmation emails.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Payload is what a scanner reads off a ticket QR code.
type Payload struct {
	TicketCode     string `json:"ticket_code"`
	EventID        int64  `json:"event_id"`
	UserID         int64  `json:"user_id"`
	RegistrationID int64  `json:"registration_id"`
}

type Encoder struct {
	size int
}

func NewEncoder() *Encoder {
	return &Encoder{size: 256}
}

// EncodeTicket renders the payload as a PNG QR code and returns it as a
// base64 data URL.
func (e *Encoder) EncodeTicket(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal qr payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.Medium, e.size)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
