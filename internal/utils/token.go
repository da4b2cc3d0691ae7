package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewPaymentToken builds the client-facing payment token. It is a
// function of the wall clock and the user id, with a short random
// suffix so two payments started by the same user in the same
// nanosecond still differ.
func NewPaymentToken(userID uint64) string {
	return fmt.Sprintf("PAY-%d-%d-%s", time.Now().UTC().UnixNano(), userID, randomHex(4))
}

// randomHex returns a hex-encoded string from n bytes of random data.
// crypto/rand.Read never fails on supported platforms; a failure here
// would leave a shorter but still usable suffix.
func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
