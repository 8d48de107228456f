package utils

import (
	"math/rand"
	"time"

	"github.com/wekesadev/park_spot/models"
	"gorm.io/gorm"
)

const referenceCodeLength = 8
const referenceCodePrefix = "PK-"
const letterBytes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueReferenceCode produces the human-readable code printed on a
// listing's certificate and shown in support conversations.
func GenerateUniqueReferenceCode(tx *gorm.DB) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))

	for {
		b := make([]byte, referenceCodeLength)
		for i := range b {
			b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
		}
		code := referenceCodePrefix + string(b)

		var listing models.Listing
		err := tx.Where("reference_code = ?", code).First(&listing).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return code, nil
			}
			return "", err
		}
	}
}
