package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const redacted = "[REDACTED]"

// Field or env var names containing one of these are never written out.
var secretMarkers = []string{"password", "secret", "dsn"}

// Owner identities are personal data. They are logged as a salted digest so
// two lines about the same owner still correlate. Account ids stay readable.
var ownerMarkers = []string{"owner_id"}

type redactor struct {
	enabled bool
	salt    string
}

var (
	redactorOnce sync.Once
	active       redactor
)

func currentRedactor() redactor {
	redactorOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
		default:
			active.enabled = true
		}
		active.salt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return active
}

// Mask returns val as it may appear in a log line under name. Callers that
// log under a generic key (an env var lookup, say) pass the real name here.
func Mask(name string, val any) any {
	r := currentRedactor()
	if !r.enabled {
		return val
	}
	return r.mask(strings.ToLower(strings.TrimSpace(name)), val)
}

func sanitizeKVs(kv []any) []any {
	r := currentRedactor()
	if len(kv) == 0 || !r.enabled {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = r.mask(strings.ToLower(fmt.Sprint(out[i])), out[i+1])
	}
	return out
}

func (r redactor) mask(name string, val any) any {
	switch {
	case name == "":
		return val
	case containsAny(name, secretMarkers):
		return redacted
	case containsAny(name, ownerMarkers):
		return r.digestAll(val)
	default:
		return val
	}
}

func (r redactor) digestAll(val any) any {
	switch v := val.(type) {
	case []uuid.UUID:
		out := make([]string, len(v))
		for i, id := range v {
			out[i] = r.digest(id.String())
		}
		return out
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = r.digest(s)
		}
		return out
	case nil:
		return ""
	default:
		return r.digest(fmt.Sprint(v))
	}
}

func (r redactor) digest(raw string) string {
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:6])
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
