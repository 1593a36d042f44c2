// ABOUTME: User-facing texts produced by the conversation engine
// ABOUTME: Kept in one place so tests and transports can reference them

package conversation

// Replies
const (
	MsgWelcome = "Welcome to the finance tracking bot!\n\n" +
		"Available commands:\n" +
		"/reg - Register\n" +
		"/add_operation - Add an operation\n" +
		"/operations - View operations\n" +
		"/cancel - Cancel the current action"

	MsgWelcomeBack       = "Welcome back, %s!"
	MsgAlreadyRegistered = "You are already registered!"
	MsgMustRegister      = "You need to register first! Use the /reg command"
	MsgAskName           = "Enter your login:"
	MsgInvalidName       = "The login must not be empty. Enter your login:"
	MsgRegistered        = "You have registered successfully!"

	MsgChooseKind     = "Choose the operation type:"
	MsgSelectedKind   = "Selected type: %s"
	MsgAskAmount      = "Enter the operation amount in %s:"
	MsgInvalidAmount  = "Invalid amount. Enter a positive number with at most two decimals."
	MsgAskDate        = "Enter the operation date in DD.MM.YYYY format:"
	MsgInvalidDate    = "Invalid date. Use the DD.MM.YYYY format."
	MsgAskComment     = "Enter a comment for the operation:"
	MsgInvalidComment = "Send the comment as a plain message:"
	MsgEntryAdded     = "Operation added successfully!"

	MsgChooseCurrency   = "Choose the currency to display operations in:"
	MsgSelectedCurrency = "Selected currency: %s"
	MsgRateUnavailable  = "Could not get the exchange rate. Try again later."

	MsgPickOption      = "Please pick one of the options."
	MsgFailure         = "Something went wrong. Please try again later."
	MsgCancelled       = "Cancelled."
	MsgNothingToCancel = "There is nothing to cancel."
)
