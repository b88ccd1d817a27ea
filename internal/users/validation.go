package users

import "regexp"

// MobilePattern accepts Indian-format mobile numbers: 10 digits, first
// digit 6-9.
var MobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// UsernamePattern accepts letters and digits only, at least 7 characters.
var UsernamePattern = regexp.MustCompile(`^[A-Za-z0-9]{7,}$`)
