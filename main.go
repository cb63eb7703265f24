// SPDX-License-Identifier: MPL-2.0

package main

import cmd "polbuild/cmd/polbuild"

func main() {
	cmd.Execute()
}
