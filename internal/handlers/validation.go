package handlers

import (
	"regexp"
	"strings"
)

// usernameRe matches 3-20 characters of letters, digits, or underscore.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func validUsername(username string) bool {
	return usernameRe.MatchString(username)
}
