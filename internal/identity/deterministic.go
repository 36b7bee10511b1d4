package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
// Keys are prefixed by kind so presets and pages never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PresetUUID identifies a preset.
func PresetUUID(presetID string) uuid.UUID {
	return UUID("go-sitekit:preset:" + strings.ToLower(strings.TrimSpace(presetID)))
}

// PageUUID identifies a page within a preset.
func PageUUID(presetID, pageID string) uuid.UUID {
	return UUID("go-sitekit:page:" + PresetUUID(presetID).String() + ":" + strings.ToLower(strings.TrimSpace(pageID)))
}

// Revision identifies one resolved document. It changes whenever the
// encoded document changes and is stable otherwise.
func Revision(scope uuid.UUID, document []byte) uuid.UUID {
	sum := sha256.Sum256(document)
	return UUID("go-sitekit:revision:" + scope.String() + ":" + hex.EncodeToString(sum[:]))
}
