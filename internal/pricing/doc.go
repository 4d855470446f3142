// Package pricing resolves the price attached to a ghost record.
//
// A price comes from one of three sources: the live quote (through the quote
// cache), the daily close of a past trading day, or a price the user typed
// in. The resolved quote is then used to convert the intended size between
// shares and dollars.
//
// Without provider credentials every market lookup answers with a MOCK quote
// priced at zero, so the service stays usable in development and tests.
package pricing
