package utils

import "regexp"

// nicknameRe matches the Name_Surname shape: two capitalized latin words
// joined by a single underscore, nothing before or after.
var nicknameRe = regexp.MustCompile(`^[A-Z][a-zA-Z]*_[A-Z][a-zA-Z]*$`)

// ValidNickname reports whether s is an acceptable in-game nickname.
func ValidNickname(s string) bool {
	return nicknameRe.MatchString(s)
}
