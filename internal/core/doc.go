// Package core wires the matching, mapping, reconciliation and extraction
// components behind one Service used by the HTTP layer.
//
// # Flow
//
// A client uploads an invoice scan to [Service.ExtractInvoice], sends the
// extracted lines to [Service.MatchProducts], confirms or corrects each
// match (corrections are memoized with [Service.SaveMapping]) and finally
// commits the invoice with [Service.AddStock].
//
// # Concurrency
//
// Match requests hold a [RequestLimiter] slot for their whole duration.
// When every slot stays busy for the configured wait, the request fails with
// [ErrTooManyRequests]. Shutdown drains the limiter through
// [Service.WaitForRequests].
//
// # Error Handling
//
// Technical errors are mapped to client messages with [MapError]. Each
// category has a code for support reference:
//
//   - VAL001-VAL004: rejected input, nothing written
//   - TXN001: reconciliation rolled back
//   - EXT001-EXT002: extraction service failures
//   - REQ001-REQ003: busy, cancelled or timed-out requests
//   - DB001-DB004: database errors without a domain sentinel
package core
