package utils

import (
	"strings"
	"time"
)

// ParseDateOr interpreta uma data YYYY-MM-DD; string vazia devolve o fallback
func ParseDateOr(dateStr string, fallback time.Time) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return fallback, nil
	}

	return time.Parse(time.DateOnly, dateStr)
}
