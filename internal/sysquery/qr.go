package sysquery

import (
	"bytes"
	"context"
	"strings"

	"github.com/mdp/qrterminal/v3"

	"pkt.systems/termclock/schema"
)

// QR renders text as a half-block QR code.
func QR(_ context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", schema.ErrMissingArgument
	}
	var buf bytes.Buffer
	qrterminal.GenerateHalfBlock(text, qrterminal.L, &buf)
	return strings.TrimRight(buf.String(), "\n"), nil
}
