/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Idahel/js-project-api/cmd"

func main() {
	cmd.Execute()
}
