package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey reports a unique index violation. Drivers translate it to
// gorm.ErrDuplicatedKey when TranslateError is on; the message check covers
// drivers that do not.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// translate maps gorm sentinels onto the given domain errors.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && isDuplicateKey(err):
		return duplicate
	default:
		return err
	}
}
