package rpc

import "strings"

// obscureError pairs an upstream error fragment with the text users see.
type obscureError struct {
	fragment string
	friendly string
}

// obscureErrors is matched in order; the first fragment contained in the
// message wins.
var obscureErrors = []obscureError{
	{
		fragment: "Deadline exceeded",
		friendly: "Server took too long to respond. Please check your Internet connection or try again later.",
	},
	{
		fragment: "Http response at 400 or 500 level",
		friendly: "Couldn't connect to the server. Please check your Internet connection or try again later.",
	},
	{
		fragment: "upstream connect error or disconnect/reset before headers",
		friendly: "There was an internal server error. Please try again later.",
	},
}

// FriendlyMessage replaces known transport error text with a readable
// message. Other messages are returned unchanged.
func FriendlyMessage(msg string) string {
	for _, e := range obscureErrors {
		if strings.Contains(msg, e.fragment) {
			return e.friendly
		}
	}
	return msg
}

// FriendlyError is FriendlyMessage applied to Message(err).
func FriendlyError(err error) string {
	return FriendlyMessage(Message(err))
}
