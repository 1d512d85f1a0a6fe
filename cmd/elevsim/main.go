// Package main runs the elevsim command line tool.
package main

import "github.com/sarchlab/elevsim/cmd/elevsim/cmd"

func main() {
	cmd.Execute()
}
