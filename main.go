// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/zipbundle/zipbundle/cmd/zipbundle"

func main() {
	cmd.Execute()
}
