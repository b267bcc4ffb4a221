package main

import (
	"github.com/Jaccxc/hookline/cmd"
)

func main() {
	cmd.Execute()
}
