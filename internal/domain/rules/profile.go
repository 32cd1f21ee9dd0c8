package rules

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	NameMinLen = 2
	NameMaxLen = 50
	AgeMin     = 18
	AgeMax     = 100
	BioMaxLen  = 500
)

var (
	ErrInvalidName = errors.New("name must be between 2 and 50 characters")
	ErrInvalidAge  = errors.New("age must be a number between 18 and 100")
	ErrInvalidBio  = errors.New("bio must be at most 500 characters")
)

// ValidateName trims the input and checks the length in runes, so multibyte
// names are not penalized.
func ValidateName(input string) (string, error) {
	name := strings.TrimSpace(input)
	length := utf8.RuneCountInString(name)
	if length < NameMinLen || length > NameMaxLen {
		return "", ErrInvalidName
	}
	return name, nil
}

func ParseAge(input string) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, ErrInvalidAge
	}
	if age < AgeMin || age > AgeMax {
		return 0, ErrInvalidAge
	}
	return age, nil
}

// ValidateBio trims the input. An empty bio is allowed.
func ValidateBio(input string) (string, error) {
	bio := strings.TrimSpace(input)
	if utf8.RuneCountInString(bio) > BioMaxLen {
		return "", ErrInvalidBio
	}
	return bio, nil
}
