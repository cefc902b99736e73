package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex    = regexp.MustCompile(`^(\+84|0)[0-9]{9,10}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	imageURLRegex = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

// ValidatePhone checks a national mobile number (+84 or 0 prefix).
func ValidatePhone(phone string) bool {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")
	return phoneRegex.MatchString(cleaned)
}

func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateImageURL accepts the delivery URLs the blob store hands out.
func ValidateImageURL(url string) bool {
	return imageURLRegex.MatchString(url)
}
