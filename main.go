package main

import "github.com/audiolibrelab/quickrec/cmd"

func main() {
	cmd.Execute()
}
