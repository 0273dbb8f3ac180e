package licensing

import "github.com/tienda/backend/internal/domain/shared"

// License errors. Callers match on these to map state conflicts to
// distinct user-facing messages; none of them is a generic failure.
var (
	ErrInvalidSerialFormat = shared.NewDomainError("INVALID_SERIAL_FORMAT", "Serial does not match the required format")
	ErrAlreadyActivated    = shared.NewDomainError("ALREADY_ACTIVATED", "License is already activated for another tenant")
	ErrLicenseExpired      = shared.NewDomainError("LICENSE_EXPIRED", "License has expired")
	ErrLicenseSuspended    = shared.NewDomainError("LICENSE_SUSPENDED", "License is suspended")
	ErrLicenseRevoked      = shared.NewDomainError("LICENSE_REVOKED", "License has been revoked")
	ErrNotActivated        = shared.NewDomainError("NOT_ACTIVATED", "License is not activated")
)
