package hxfeed

import "context"

// CallbackPrefix starts every JSONP callback name. The loader key follows,
// so a loader keyed 1a2b3c4d answers to receiveJSON1a2b3c4d.
const CallbackPrefix = "receiveJSON"

// Callback receives the decoded payload of a JSONP script.
//
// ctx is the context passed to Registry.Dispatch. Loaders dispatch their own
// scripts with the context of the load that fetched them, which lets a
// callback recognise responses to superseded loads and drop them.
type Callback func(ctx context.Context, data any)

// CallbackName returns the JSONP callback name for a loader key.
func CallbackName(key string) string {
	return CallbackPrefix + key
}
