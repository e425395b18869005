package main

import "github.com/ziadkadry99/fragview/cmd"

func main() {
	cmd.Execute()
}
