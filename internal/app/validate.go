package app

import (
	"fmt"
	"strings"
)

func validateSecret(secret string) error {
	if strings.ContainsAny(secret, "\r\n\x00") {
		return fmt.Errorf("password must be a single line without NUL bytes")
	}
	return nil
}
