package presenter

import (
	"encoding/base64"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Presenter delivers formatted messages and invite QR images without
// coupling to the command layer.
type Presenter struct {
	sendMessage func(channel, message string) error
	sendImage   func(channel, imageBase64 string) error

	qrSize int
}

func NewPresenter(sendMessage func(channel, message string) error, sendImage func(channel, imageBase64 string) error, qrSize int) *Presenter {
	if qrSize <= 0 {
		qrSize = 256
	}
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
		qrSize:      qrSize,
	}
}

// Text sends a plain formatted block.
func (p *Presenter) Text(channel, message string) error {
	if p == nil || p.sendMessage == nil {
		return nil
	}
	if strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(channel, message)
}

// InviteCard sends the invite text plus a QR code for the join URL.
// QR encoding failure degrades to text only.
func (p *Presenter) InviteCard(channel, message, joinURL string) error {
	if p == nil {
		return nil
	}
	if err := p.Text(channel, message); err != nil {
		return err
	}
	if p.sendImage == nil || strings.TrimSpace(joinURL) == "" {
		return nil
	}
	png, err := qrcode.Encode(joinURL, qrcode.Medium, p.qrSize)
	if err != nil {
		return nil
	}
	return p.sendImage(channel, base64.StdEncoding.EncodeToString(png))
}
