package utils

import (
	ua "github.com/mssola/user_agent"
)

// ClientInfo holds the fields parsed from a User-Agent string for request
// logging.
type ClientInfo struct {
	DeviceType string `json:"device_type"` // mobile, desktop, bot
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	Raw        string `json:"raw"`
}

// ParseUserAgent extracts structured client information from a User-Agent
// header value. Unknown or empty agents parse to "unknown" fields rather
// than an error.
func ParseUserAgent(userAgent string) ClientInfo {
	if userAgent == "" {
		return ClientInfo{DeviceType: "unknown", OS: "unknown", Browser: "unknown"}
	}

	parser := ua.New(userAgent)
	browser, _ := parser.Browser()

	info := ClientInfo{
		OS:      parser.OS(),
		Browser: browser,
		Raw:     userAgent,
	}

	switch {
	case parser.Bot():
		info.DeviceType = "bot"
	case parser.Mobile():
		info.DeviceType = "mobile"
	default:
		info.DeviceType = "desktop"
	}
	if info.OS == "" {
		info.OS = "unknown"
	}
	if info.Browser == "" {
		info.Browser = "unknown"
	}
	return info
}
