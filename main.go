// ./main.go
package main

import (
	"github.com/xkilldash9x/lantern/cmd"
)

// main is the entry point for the lantern browser.
func main() {
	cmd.Execute()
}
