// Command version prints the version srcfmt is built as: the nearest git tag
// plus any commits and local changes since, or "dev" outside a git checkout.
package main

import (
	"fmt"
	"os/exec"
	"strings"
)

func main() {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		fmt.Print("dev")
		return
	}
	fmt.Print(strings.TrimSpace(string(out)))
}
