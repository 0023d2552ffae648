package main

import "github.com/foliocr/folio/cmd/folio/cmd"

func main() {
	cmd.Execute()
}
