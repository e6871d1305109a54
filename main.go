// Copyright 2025 The Geocode Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/geocode-go/geocode/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
