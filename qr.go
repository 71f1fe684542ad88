package main

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// InviteURL is the link a guest follows to join room
func InviteURL(base, room string) string {
	return fmt.Sprintf("%s?room=%s", base, url.QueryEscape(room))
}

// InviteQR renders the invite link for room as a PNG
func InviteQR(base, room string) ([]byte, error) {
	png, err := qrcode.Encode(InviteURL(base, room), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("invite qr: %w", err)
	}
	return png, nil
}
