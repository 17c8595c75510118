// Package delivery holds the inbound surfaces of the bot.
package delivery

import "context"

// Delivery is a long-running inbound surface started by the application
// lifecycle. Serve blocks until the surface stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
