package shared

import (
	"fmt"
	"slices"
	"strings"
)

// ParseEnum validates raw against a closed set of allowed values.
// Matching is exact; surrounding whitespace is trimmed.
func ParseEnum[T ~string](field, raw string, allowed ...T) (T, error) {
	v := T(strings.TrimSpace(raw))
	if slices.Contains(allowed, v) {
		return v, nil
	}
	return "", NewDomainError(ErrInvalidEnum.Code,
		fmt.Sprintf("invalid %s %q: must be one of %s", field, raw, joinEnum(allowed)))
}

// ParseOptionalEnum is ParseEnum that accepts an empty value.
func ParseOptionalEnum[T ~string](field, raw string, allowed ...T) (T, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return ParseEnum(field, raw, allowed...)
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
