package main

import "github.com/notargets/idpfem/cmd"

func main() {
	cmd.Execute()
}
