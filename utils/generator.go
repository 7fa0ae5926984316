package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	config "github.com/anjiri1684/consult_marketplace/configs"
)

const meetCodeLength = 10
const letterBytes = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateMeetURL builds the meeting link handed to both parties when a
// booking is confirmed.
func GenerateMeetURL() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	b := make([]byte, meetCodeLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}

	base := config.Config("MEET_BASE_URL")
	if base == "" {
		base = "https://meet.consultmarketplace.in"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), string(b))
}

// GeneratePennyAmount returns a random penny-test deposit between 1 and 99
// paise.
func GeneratePennyAmount() int64 {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	return int64(seededRand.Intn(99)) + 1
}
