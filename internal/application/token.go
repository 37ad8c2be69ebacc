package application

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// AccessToken derives the deterministic invitation token for a participant.
// The token is a keyed hash over the participant and planification ids under
// the server secret, so regenerating it always yields the same value.
func AccessToken(secret []byte, participantID, planificationID string) string {
	// blake2b keys are capped at 64 bytes; fold longer secrets first.
	key := secret
	if len(key) > 64 {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		// Only reachable with an oversized key, which is folded above.
		panic(err)
	}
	h.Write([]byte(participantID))
	h.Write([]byte{0})
	h.Write([]byte(planificationID))
	return hex.EncodeToString(h.Sum(nil))
}

// TokenMatches compares a presented token against the stored one.
func TokenMatches(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
