package service

import "errors"

// Sentinel errors the handlers translate into HTTP responses.  Everything
// persistence-shaped arrives as repository.ErrUnavailable and passes through
// untouched; these cover the workflow-level outcomes.
var (
	// ErrAlreadyHandled marks a stale reviewer action: by the time the click
	// arrived the application had already been resolved.  Soft outcome, not
	// a failure.
	ErrAlreadyHandled = errors.New("application already handled")

	// ErrAlreadyApproved is returned when a user with an active grant tries
	// to file a fresh registration application.
	ErrAlreadyApproved = errors.New("access already granted")

	// ErrAlreadyPending is returned when a user re-files while an
	// application is still awaiting review.
	ErrAlreadyPending = errors.New("application already pending")

	// ErrBanned rejects any flow except ban appeal for a banned user.
	ErrBanned = errors.New("user is banned")

	// ErrNotBanned is returned by unban and appeal for users who are not
	// actually banned.
	ErrNotBanned = errors.New("user is not banned")

	// ErrAlreadyBanned makes a duplicate ban a visible no-op.
	ErrAlreadyBanned = errors.New("user is already banned")

	// ErrInvalidNickname is returned when the nickname does not match the
	// Name_Surname pattern.
	ErrInvalidNickname = errors.New("nickname must look like Name_Surname")

	// ErrShortDescription is returned when the application description is
	// too short to review.
	ErrShortDescription = errors.New("description too short")

	// ErrEmptySelection rejects a request or confirmation with no
	// capabilities chosen.
	ErrEmptySelection = errors.New("select at least one capability")

	// ErrUnknownCapability rejects capability names outside the known set.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrNoAccess gates flows that require an existing grant, such as the
	// additional-access request and suggestions.
	ErrNoAccess = errors.New("no active access")

	// ErrNothingMissing is returned when an additional-access request is
	// filed by a user who already holds every capability.
	ErrNothingMissing = errors.New("all capabilities already granted")

	// ErrNotGranted is returned when a revoke names a capability the user
	// does not hold.
	ErrNotGranted = errors.New("capability not granted")

	// ErrStaleList is returned when a numeric pending pick no longer matches
	// the stored snapshot; the reviewer should re-list.
	ErrStaleList = errors.New("pending list is stale")

	// ErrNoSession is returned when a toggle/confirm arrives without an
	// active review session.
	ErrNoSession = errors.New("no active review session")
)
