package helper

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeUserAgent summarises a User-Agent header for audit details.
// An empty header yields nil.
func DescribeUserAgent(ua string) map[string]interface{} {
	if strings.TrimSpace(ua) == "" {
		return nil
	}
	parsed := useragent.New(ua)
	browser, version := parsed.Browser()

	platform := "desktop"
	switch {
	case parsed.Bot():
		platform = "bot"
	case parsed.Mobile():
		platform = "mobile"
	}

	desc := map[string]interface{}{"platform": platform}
	if browser != "" {
		desc["browser"] = browser
	}
	if version != "" {
		desc["browserVersion"] = version
	}
	if os := parsed.OS(); os != "" {
		desc["os"] = os
	}
	return desc
}
