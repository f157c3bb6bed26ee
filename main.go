package main

import "github.com/frahmantamala/labtrack/cmd"

func main() {
	cmd.Execute()
}
