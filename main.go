package main

import "FamilyTime/cmd"

func main() {
	cmd.Execute()
}
