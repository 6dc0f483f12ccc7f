package main

import "github.com/HaiFongPan/r2s3-browser/cmd"

func main() {
	cmd.Execute()
}
