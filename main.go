// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/bundlecell/bundlecell/cmd/bundlecell"

func main() {
	cmd.Execute()
}
