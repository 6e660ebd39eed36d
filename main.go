package main

import "sjsage522/filmwaiver/cmd"

func main() {
	cmd.Execute()
}
