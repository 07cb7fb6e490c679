package formaterror

import "strings"

// FormatError translates raw driver errors into the field-keyed messages the
// API returns. Anything unrecognized collapses to a generic message so
// internals never leak to clients.
func FormatError(err string) map[string]string {
	errorMessages := make(map[string]string)

	if strings.Contains(err, "username") {
		errorMessages["Taken_username"] = "Username Already Taken"
	}
	if strings.Contains(err, "email") {
		errorMessages["Taken_email"] = "Email Already Taken"
	}
	if strings.Contains(err, "slug") {
		errorMessages["Taken_slug"] = "Title Already Taken"
	}
	if strings.Contains(err, "hashedPassword") || strings.Contains(err, "hashed") {
		errorMessages["Incorrect_password"] = "Incorrect Password"
	}
	if strings.Contains(err, "record not found") {
		errorMessages["No_record"] = "No Record Found"
	}

	if len(errorMessages) > 0 {
		return errorMessages
	}
	return map[string]string{"Incorrect_details": "Incorrect Details"}
}
