package main

import "github.com/Mohsinsiddi/hethers/cmd"

func main() {
	cmd.Execute()
}
