package config

import (
	"github.com/go-playground/validator"
)

// validateNIF checks a Portuguese tax number: nine digits opening with a
// legal entity-class digit, where the last one is a mod-11 check digit over
// the first eight.
func validateNIF(fl validator.FieldLevel) bool {
	return ValidNIF(fl.Field().String())
}

func ValidNIF(nif string) bool {
	if len(nif) != 9 {
		return false
	}
	for _, r := range nif {
		if r < '0' || r > '9' {
			return false
		}
	}

	// 0 and 4 are not assigned entity classes.
	switch nif[0] {
	case '1', '2', '3', '5', '6', '7', '8', '9':
	default:
		return false
	}

	sum := 0
	for i := 0; i < 8; i++ {
		sum += int(nif[i]-'0') * (9 - i)
	}

	check := 11 - sum%11
	if check >= 10 {
		check = 0
	}
	return check == int(nif[8]-'0')
}
