package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/kailas-cloud/slidedex/internal/domain"
)

// Fingerprint derives a cache key for a file from its path, size, and
// modification time. It never reads file bytes, so two files sharing all
// three attributes collide; that approximation is accepted in exchange
// for not hashing multi-megabyte decks on every request.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	input := fmt.Sprintf("%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]), nil
}
