package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/onebyte2016/alx-travel-app-0x03/models"
	"gorm.io/gorm"
)

const bookingReferenceLength = 8
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TxRefPrefix is the prefix of every transaction reference sent to Chapa.
const TxRefPrefix = "BOOKPAY"

// BuildTxRef generates a fresh transaction reference like
// BOOKPAY-3F2A1B4C5D6E.
func BuildTxRef(prefix string) string {
	if prefix == "" {
		prefix = TxRefPrefix
	}
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(hex[:12]))
}

// GenerateUniqueBookingReference returns a human-readable reference that no
// existing booking uses.
func GenerateUniqueBookingReference(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, bookingReferenceLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		reference := "BK-" + string(b)

		var booking models.Booking
		err := tx.Where("reference = ?", reference).First(&booking).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return reference, nil
			}
			return "", err
		}
	}
}
