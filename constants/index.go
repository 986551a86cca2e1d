package constants

const (
	DATA_INPUT_IS_NOT_NUMBER   = "Param must be a positive number"
	ERROR_INPUT                = "Invalid input"
	ERROR_INTERNAL_ERROR       = "Internal server error"
	ERROR_UNAUTHORIZED         = "Missing or invalid token"
	ERROR_PARSE_DATA_TO_LOCALS = "Failed to read request data"

	SESSION_NOT_FOUND     = "Session not found"
	SESSION_EXPIRED       = "Session has already ended"
	SESSION_FULL          = "Session is fully booked"
	TRAINER_NOT_FOUND     = "Trainer not found"
	ACCOUNT_NOT_FOUND     = "Account not found"
	RESERVATION_NOT_FOUND = "Reservation not found"
	RESERVATION_DUPLICATE = "You already have a reservation for this session"
	RESERVATION_FORBIDDEN = "You can only manage your own reservations"
	ROLE_LOCKOUT          = "Admins cannot remove their own admin role"
	PERMISSION_DENIED     = "Permission denied"
	USERNAME_TAKEN        = "Username is already taken"
)

// Locals keys shared between middleware, validate and handler.
const (
	LOCALS_ACTOR   = "actor"
	LOCALS_INPUT   = "input"
	LOCALS_INPUTID = "inputId"
)
