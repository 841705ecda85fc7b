package main

import (
	"context"

	"chronam-essays/cmd/chronam-essays/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
