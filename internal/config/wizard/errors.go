package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errMembersRequired = errors.New("at least 3 members are required")
	errMemberInvalid   = errors.New("members must be host names or IP addresses")
	errMemberDuplicate = errors.New("members must be unique")
	errPortInvalid     = errors.New("port must be a number between 1 and 65535")
	errTokenRequired   = errors.New("cluster token is required")
	errNumberInvalid   = errors.New("must be a whole number")
	errScheduleInvalid = errors.New("schedule must have 5 fields")
	errBucketRequired  = errors.New("bucket and region are required when backups are enabled")
)
