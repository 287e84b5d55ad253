package constants

// User-facing messages. Guardrail and validation failures read as plain
// product copy, not as technical errors.
const (
	MsgQuestionTooShort = "Please ask a longer question so I can understand what you're looking for."
	MsgQuestionTooLong  = "That question is too long. Please keep it under 500 characters."
	MsgOutOfDomain      = "I can only answer questions about your restaurant's sales, orders, products, and locations."
	MsgCouldNotUnderstand = "I couldn't understand that question well enough to build a safe query. Try rephrasing it."
	MsgExecutionFailed  = "I wasn't able to get results for that question. Try rephrasing it or asking something simpler."
	MsgNoData           = "I couldn't find any data matching your question. Try adjusting the date range or filters."
	MsgResultsInvalid   = "The results for that question didn't come back in a usable shape. Try rephrasing it."
	MsgInternalError    = "Something went wrong while processing your question. Please try again."

	MsgMissingCredentials = "The analytics service isn't configured with valid model credentials. Please contact your administrator."
	MsgRateLimited        = "The analytics service is receiving too many requests right now. Please wait a moment and try again."
)
