package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleWarning.Render(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// ApproveAccounts is the permission prompt shown before exposing
// account addresses to the dashboard, mirroring a wallet extension's
// connect dialog.
func ApproveAccounts(accounts []string) bool {
	fmt.Println(StyleTitle.Render("Connect request"))
	fmt.Println(Meta("The dashboard wants access to these accounts:"))
	for _, a := range accounts {
		fmt.Println("  " + Addr(a))
	}
	return Confirm("Allow access?")
}
