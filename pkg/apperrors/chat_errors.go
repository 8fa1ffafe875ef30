package apperrors

var (
	// Domain errors used by usecases and repositories
	ErrSelfChat               = InvalidInput("cannot open a direct conversation with yourself")
	ErrEmptyGroup             = InvalidInput("group conversation needs at least one member besides the creator")
	ErrEmptyContent           = InvalidInput("message content cannot be empty")
	ErrNotAMember             = Forbidden("sender is not a member of this conversation")
	ErrConversationNotFound   = NotFound("conversation not found")
	ErrMessageNotFound        = NotFound("message not found")
	ErrInvalidCredential      = Unauthorized("invalid or expired credential")
	ErrDirectConversationRace = Conflict("direct conversation already created concurrently")
)

func ErrStoreUnavailable(cause error) error {
	return Wrap(CodeUnavailable, "durable store unreachable", cause)
}
