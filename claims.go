package portal

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claim keys in lookup order. Issuers disagree on names, the first
// non empty value wins.
var (
	SubjectClaimKeys   = []string{"nameid", "sub"}
	FirstNameClaimKeys = []string{"given_name", "firstname"}
	LastNameClaimKeys  = []string{"family_name", "lastname"}
)

// Claims holds the identity fields decoded from a credential payload.
// They are display data: the remote API is the only authority on access.
type Claims struct {
	SubjectID string `json:"subject_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// StudentID returns the subject as the numeric id used in API paths
func (c Claims) StudentID() (int, bool) {
	if c.SubjectID == "" {
		return 0, false
	}
	id, err := strconv.Atoi(c.SubjectID)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FullName joins first and last name
func (c Claims) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsZero reports whether no identity field was decoded
func (c Claims) IsZero() bool {
	return c.SubjectID == "" && c.FirstName == "" && c.LastName == ""
}

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeCredential extracts identity claims from a compact token without
// verifying its signature or expiration.
func DecodeCredential(credential string) (Claims, error) {
	parts := strings.Split(credential, ".")
	if len(parts) < 2 {
		return Claims{}, ErrMalformed
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return Claims{}, invalidEncoding(err)
	}

	mp := jwt.MapClaims{}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&mp); err != nil {
		return Claims{}, invalidEncoding(err)
	}

	return Claims{
		SubjectID: lookupClaim(mp, SubjectClaimKeys...),
		FirstName: lookupClaim(mp, FirstNameClaimKeys...),
		LastName:  lookupClaim(mp, LastNameClaimKeys...),
	}, nil
}

// decodeSegment accepts base64url with or without padding, and the standard
// alphabet some issuers emit.
func decodeSegment(seg string) ([]byte, error) {
	out, err := segmentParser.DecodeSegment(seg)
	if err == nil {
		return out, nil
	}

	if l := len(seg) % 4; l > 0 {
		seg += strings.Repeat("=", 4-l)
	}

	if std, stdErr := base64.StdEncoding.DecodeString(seg); stdErr == nil {
		return std, nil
	}

	return nil, err
}

func lookupClaim(mp jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v := claimString(mp[key]); v != "" {
			return v
		}
	}
	return ""
}

func claimString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		// multi valued claims keep the first entry
		if len(val) > 0 {
			return claimString(val[0])
		}
	}
	return ""
}
