// Command broadcast sends one message to every room of the local chat server.
//
//	broadcast "message"
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"broadcast/internal/client"
)

func main() {
	run(os.Args[1:], os.Stdout, client.New(client.DefaultServer, nil))
}

func run(args []string, out io.Writer, c *client.Client) {
	if len(args) < 1 {
		fmt.Fprintln(out, `Usage: broadcast "message"`)
		return
	}

	err := c.Broadcast(context.Background(), args[0])

	var statusErr *client.StatusError
	switch {
	case err == nil:
		fmt.Fprintln(out, "Message sent successfully")
	case errors.As(err, &statusErr):
		fmt.Fprintf(out, "ERROR: %d - %s\n", statusErr.Code, statusErr.Body)
	case errors.Is(err, client.ErrUnreachable):
		fmt.Fprintf(out, "Error connecting to: %s\n", c.Server())
	default:
		fmt.Fprintf(out, "ERROR: %v\n", err)
	}
}
