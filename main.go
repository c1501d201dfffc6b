package main

import "github.com/ValentinKolb/sector/cmd"

func main() {
	cmd.Execute()
}
