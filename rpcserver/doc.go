// Package rpcserver dispatches remote procedure calls signalled through the
// controller's byte variables.
//
// Each registered service owns one status register, starting at a base
// index. A peer requests a service by writing the requested value into its
// register; the server polls the register block, executes the service's
// precondition commands and handler, and writes the outcome (idle or error)
// back into the register. While a service runs, further requests for it are
// ignored.
package rpcserver
