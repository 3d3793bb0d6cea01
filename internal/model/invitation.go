package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name is too long")
)

type Invitation struct {
	ID        uint `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	Name      string `gorm:"not null"`
}

// Key returns the decimal id used in links and listings.
func (i *Invitation) Key() string {
	return strconv.FormatUint(uint64(i.ID), 10)
}

// ParseKey accepts only canonical positive decimal ids: "7" is valid, "07", "+7" and "0" are not.
func ParseKey(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}

	if strconv.FormatUint(n, 10) != s {
		return 0, false
	}

	return uint(n), true
}

// CheckName rejects blank names and names longer than maxLen runes; maxLen 0 means no limit.
func CheckName(name string, maxLen int) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}

	if maxLen > 0 && utf8.RuneCountInString(name) > maxLen {
		return fmt.Errorf("%w, must be at most %d characters", ErrNameTooLong, maxLen)
	}

	return nil
}
