package main

import "github.com/aweris/nursery/cmd/nursery/cmd"

func main() {
	cmd.Execute()
}
