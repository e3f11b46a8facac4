package main

import "github.com/voltpay/voltcli/cmd"

func main() {
	cmd.Execute()
}
