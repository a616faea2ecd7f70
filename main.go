// Package main is the entrypoint for sfucored.
package main

import "sfucore/cmd"

func main() {
	cmd.Run()
}
