package prospects

import "errors"

var (
	// ErrProspectNotFound is returned when no prospect has the requested id
	ErrProspectNotFound = errors.New("prospect not found")

	// ErrInvalidName is returned when the name is empty
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidStatus is returned when a status is not one of the pipeline stages
	ErrInvalidStatus = errors.New("unknown status")

	// ErrInvalidPriority is returned when a priority is not high, medium or low
	ErrInvalidPriority = errors.New("priority must be high, medium or low")

	// ErrInvalidContactType is returned when a logged contact has an unknown type
	ErrInvalidContactType = errors.New("unknown contact type")

	// ErrInvalidActionType is returned when a next action type is unknown
	ErrInvalidActionType = errors.New("unknown next action type")

	// ErrInvalidDate is returned when a date is not a valid calendar day
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrInvalidSort is returned when a sort key or direction is unknown
	ErrInvalidSort = errors.New("sort must be nextAction, lastContact, name or priority, dir asc or desc")

	// ErrTerminalStatus is returned when advancing a prospect that has no next stage
	ErrTerminalStatus = errors.New("status cannot be advanced")

	// ErrDeleteNotConfirmed is returned when a delete was not confirmed by the user
	ErrDeleteNotConfirmed = errors.New("delete requires confirmation")
)

var errDuplicateID = errors.New("prospects: duplicate id")
