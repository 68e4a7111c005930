package utils

import (
	"github.com/google/uuid"
)

func GetUUID() string {
	return uuid.New().String()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
