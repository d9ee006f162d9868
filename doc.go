// Package cardgate is a client library for the CardGate payment gateway
// REST API. A Client authenticates with the merchant id and API key and
// exposes the gateway resources as collections: Transactions for one-off
// payments (registration, status, refunds, recurring charges and
// callback verification), Subscriptions for recurring billing
// agreements, and Methods for the payment methods enabled on a site.
//
// Amounts are integers in cents throughout. All failures are returned as
// *Error values carrying a dotted code such as
// "Client.Request.Remote.401" or "Transaction.Not.Initialized"; use
// ErrorCode to branch on them.
package cardgate
