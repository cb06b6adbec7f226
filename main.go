package main

import "github.com/notargets/splinerecovery/cmd"

func main() {
	cmd.Execute()
}
