/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/driftframe/cmd/driftframe/cmd"

func main() {
	cmd.Execute()
}
