package service

import (
	"crypto/rand"
	"fmt"
)

const (
	cardNumberLen = 16
	cardNumberBIN = "492912" // issuer identification prefix
)

// generateCardNumber returns a 16-digit card number: fixed BIN, random
// body, Luhn check digit.
func generateCardNumber() (string, error) {
	body, err := randomDigits(cardNumberLen - 1 - len(cardNumberBIN))
	if err != nil {
		return "", fmt.Errorf("random digits: %w", err)
	}
	full := cardNumberBIN + body
	return full + luhnCheckDigit(full), nil
}

// randomDigits produces count uniformly distributed decimal digits using
// rejection sampling over crypto/rand bytes.
func randomDigits(count int) (string, error) {
	const threshold = 250 // 256 - (256 % 10)
	out := make([]byte, 0, count)
	buf := make([]byte, 32)
	for len(out) < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && len(out) < count; i++ {
			if buf[i] < threshold {
				out = append(out, '0'+buf[i]%10)
			}
		}
	}
	return string(out), nil
}

func luhnCheckDigit(body string) string {
	sum, dbl := 0, true
	for i := len(body) - 1; i >= 0; i-- {
		d := int(body[i] - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return string(rune('0' + (10-sum%10)%10))
}

// luhnValid reports whether a numeric string passes the Luhn checksum.
func luhnValid(number string) bool {
	sum, dbl := 0, false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if dbl {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		dbl = !dbl
	}
	return sum%10 == 0
}
