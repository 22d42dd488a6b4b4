package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo is the parsed User-Agent summary stored in audit log details.
type DeviceInfo struct {
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"is_bot"`
	Raw        string `json:"raw"`
}

var tabletMarkers = []string{"ipad", "tablet", "kindle", "nexus 7", "nexus 9", "nexus 10", "sm-t"}

// ParseUserAgent extracts device information from a User-Agent string.
// An empty or unparseable string yields "unknown" fields rather than an error.
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
			Raw:        userAgent,
		}
	}

	parser := ua.New(userAgent)

	return DeviceInfo{
		DeviceType: deviceType(parser),
		OS:         osName(parser),
		Browser:    browserName(parser),
		IsBot:      parser.Bot(),
		Raw:        userAgent,
	}
}

func deviceType(parser *ua.UserAgent) string {
	if !parser.Mobile() {
		return "desktop"
	}
	lower := strings.ToLower(parser.UA())
	for _, marker := range tabletMarkers {
		if strings.Contains(lower, marker) {
			return "tablet"
		}
	}
	return "mobile"
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version == "" {
		return info.Name
	}
	return info.Name + " " + info.Version
}

func browserName(parser *ua.UserAgent) string {
	name, version := parser.Browser()
	if name == "" {
		return "Unknown"
	}
	if version == "" {
		return name
	}
	return name + " " + version
}
