package roster

import (
	"regexp"
	"time"
)

var (
	reUsername   = regexp.MustCompile(`^[a-zA-Z0-9-_.]{3,25}$`)
	rePlatformID = regexp.MustCompile(`^[0-9]{1,9}$`)
	reTHMID      = regexp.MustCompile(`^[a-zA-Z0-9-_.]{2,16}$`)
)

// ValidUsername reports whether s is a valid leaderboard username
// (alphanumeric plus - _ . between 3 and 25 characters).
func ValidUsername(s string) bool {
	return reUsername.MatchString(s)
}

// ValidNumericID reports whether s is a valid HackTheBox or RootMe user id.
func ValidNumericID(s string) bool {
	return rePlatformID.MatchString(s)
}

// ValidTHMID reports whether s is a valid TryHackMe username.
func ValidTHMID(s string) bool {
	return reTHMID.MatchString(s)
}

// ParseBirthday parses a DD/MM/YYYY birthday.
func ParseBirthday(s string) (time.Time, error) {
	return time.Parse("02/01/2006", s)
}
