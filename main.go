package main

import "github.com/jsphweid/drumbbn/cmd"

func main() {
	cmd.Execute()
}
