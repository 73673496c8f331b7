package uploads

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Signer issues one-time signed-upload credentials for the external media
// host. The client uploads directly; this service never touches the bytes.
type Signer struct {
	APIKey    string
	Secret    string
	Folder    string
	ExpiresIn time.Duration
}

func NewSigner(apiKey, secret string) *Signer {
	return &Signer{
		APIKey:    apiKey,
		Secret:    secret,
		Folder:    "bookly/chat",
		ExpiresIn: 10 * time.Minute,
	}
}

// Credentials is what the widget needs to perform one direct upload.
type Credentials struct {
	APIKey    string `json:"apiKey"`
	Folder    string `json:"folder"`
	Timestamp int64  `json:"timestamp"`
	ExpiresAt int64  `json:"expiresAt"`
	Signature string `json:"signature"`
}

// Sign produces credentials valid for a single upload window. The media
// host recomputes HMAC-SHA256 over the sorted params with the shared
// secret.
func (s *Signer) Sign(now time.Time) Credentials {
	ts := now.Unix()
	exp := now.Add(s.ExpiresIn).Unix()

	params := map[string]string{
		"folder":    s.Folder,
		"timestamp": fmt.Sprintf("%d", ts),
		"expires":   fmt.Sprintf("%d", exp),
	}

	return Credentials{
		APIKey:    s.APIKey,
		Folder:    s.Folder,
		Timestamp: ts,
		ExpiresAt: exp,
		Signature: s.signature(params),
	}
}

// Verify checks an incoming signature against the same canonical form; the
// upload callback uses it to reject forged notifications.
func (s *Signer) Verify(params map[string]string, incoming string) bool {
	return hmac.Equal([]byte(s.signature(params)), []byte(incoming))
}

func (s *Signer) signature(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	h := hmac.New(sha256.New, []byte(s.Secret))
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil))
}
