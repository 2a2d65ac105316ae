package helper

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dateOnly = "2006-01-02"

// ClientIP returns the originating address of r, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ParseDate parses an RFC 3339 timestamp or a YYYY-MM-DD date. A date-only
// value is the start of that day, or its last millisecond when endOfDay is set.
// An empty string yields nil.
func ParseDate(s string, endOfDay bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.ParseInLocation(dateOnly, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

// ParseObjectID parses an optional hex ObjectID. An empty string yields nil.
func ParseObjectID(s string) (*primitive.ObjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", s)
	}
	return &oid, nil
}
