package notify

import (
	"net/url"
	"strings"
)

const chatBaseURL = "https://wa.me/"

// ChatLink builds a click-to-chat URL with the text pre-filled.
func ChatLink(phone, text string) string {
	return chatBaseURL + phone + "?text=" + encodeComponent(text)
}

// encodeComponent percent-encodes spaces as %20 rather than +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
