// Copyright (C) The Negbinfit Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/autosome-ru/negbinfit"

func main() {
	negbinfit.Main()
}
