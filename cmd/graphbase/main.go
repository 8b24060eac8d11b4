package main

import "github.com/emrgen/graphbase/cmd"

func main() {
	cmd.Execute()
}
