package auth

import "strings"

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizePhone strips formatting so "+234 800-000 0000" and "+2348000000000" match.
func normalizePhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
}

// normalizeIdentifier treats anything with an @ as an email.
func normalizeIdentifier(identifier string) string {
	if strings.Contains(identifier, "@") {
		return normalizeEmail(identifier)
	}
	return normalizePhone(identifier)
}
