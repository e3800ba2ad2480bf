package pipeline

import "regexp"

// namePattern matches the identity service's account naming rules:
// ASCII letters, digits and underscore, 3 to 16 characters.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

// IsValidFormat reports whether name is syntactically acceptable as a
// target name. Pure check, no I/O.
func IsValidFormat(name string) bool {
	return namePattern.MatchString(name)
}
