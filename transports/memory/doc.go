// Package memory provides an in-process transport for tests and local
// development.
//
// Importing the package registers the provider for the mem scheme:
//
//	import _ "github.com/glimte/mqlink-go/transports/memory"
//
// Broker URLs name a process-wide broker by host, so links built from the
// same URL share queues:
//
//	mem://local/
//
// Messages cross the broker as sealed envelope bytes, the same wire form
// the RabbitMQ transport uses, so payload encoding is exercised end to end
// without a broker process.
package memory
