package main

import "github.com/forPelevin/tailcut/internal/cli"

func main() { cli.Main() }
