package partner

import "github.com/erp/console/internal/domain/shared"

// Status is the activity status shared by partner records
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// UnmarshalText rejects unknown statuses; an empty status is allowed
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := shared.ParseOptionalEnum("status", string(text), StatusActive, StatusInactive)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
