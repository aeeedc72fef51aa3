// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/vendfile/vendfile/cmd/vendfile"

func main() {
	cmd.Execute()
}
