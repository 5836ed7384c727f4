package utils

import "regexp"

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{5,32}$`)
	codeRegex     = regexp.MustCompile(`^[0-9]{6}$`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUsername accepts word characters, at least 5 of them.
func IsValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// IsValidLoginCode checks the shape of a submitted code (6 digits) before
// it is ever compared against the stored one.
func IsValidLoginCode(code string) bool {
	return codeRegex.MatchString(code)
}
