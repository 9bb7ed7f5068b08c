package constants

const (
	ERROR_INPUT              = "Invalid input"
	DATA_INPUT_IS_NOT_NUMBER = "Input is not a number"
	FORBIDDEN                = "Forbidden"
	NOT_FOUND                = "Not found"
	INTERNAL_ERROR           = "Internal server error"
)
