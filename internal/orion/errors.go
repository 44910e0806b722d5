package orion

import "errors"

// Sentinel errors for entity store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotFound is returned when the store answers 404. On the existence
	// probe used by Upsert this is an expected outcome, not a failure.
	ErrNotFound = errors.New("orion: entity not found")

	// ErrConflict is returned when creating an entity whose id already exists.
	ErrConflict = errors.New("orion: entity already exists")

	// ErrTransport is returned for network failures and unexpected non-2xx responses.
	ErrTransport = errors.New("orion: transport failure")

	// ErrUnknownAttributeType is returned when an attribute envelope carries an
	// unrecognised type tag.
	ErrUnknownAttributeType = errors.New("orion: unknown attribute type")

	// ErrAttributeMismatch is returned when an attribute's payload does not
	// match the shape its type tag declares.
	ErrAttributeMismatch = errors.New("orion: attribute payload does not match type")

	// ErrInvalidEntity is returned when an entity lacks an id or type.
	ErrInvalidEntity = errors.New("orion: entity requires id and type")
)
