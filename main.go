package main

import "github.com/user/bookmarks/cmd"

func main() {
	cmd.Execute()
}
