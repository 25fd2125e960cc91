// Package inputval validates and decodes request input before it reaches
// a service.
package inputval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("the request body is empty")

// IsValidEmail reports whether s is a bare address (no display name) with
// a well formed local part and domain.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return dotsOK(s[:at]) && dotsOK(s[at+1:])
}

func dotsOK(part string) bool {
	return part != "" &&
		!strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// DecodeJSON reads r's JSON body into dst. Bodies over MaxBodyBytes are
// rejected.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("the request body is not valid JSON: %w", err)
	}
	return nil
}

// ObjectIDs parses hex ids. It reports the first value that is not a
// valid ObjectID.
func ObjectIDs(raw []string) ([]primitive.ObjectID, string, bool) {
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return nil, s, false
		}
		out = append(out, oid)
	}
	return out, "", true
}

// IDFields converts the hex string values of keys in m to ObjectIDs in
// place. It reports the first key whose value is not a valid id.
func IDFields(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return k, false
		}
		oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
		if err != nil {
			return k, false
		}
		m[k] = oid
	}
	return "", true
}
