// Package contracts provides the message types that travel across a queue link.
//
// Three payload kinds are supported:
//   - TextMessage: a plain string
//   - MapMessage: uniquely keyed, typed scalar entries (string or int)
//   - BytesMessage: an opaque byte payload with its content type
//
// Messages are wrapped in an Envelope for transport. The envelope carries the
// message ID, kind and timestamp beside the JSON body so transports can route
// and log without decoding payloads, and Open reconstructs the concrete type
// on the receiving side. Map entries use tagged Values so integer typing
// survives JSON transport.
package contracts
