package main

import (
	"os"
	sys "os"
)

func main() {
	if len(os.Args) > 5 {
		os.Exit(2) // want "вызов os.Exit в функции main запрещён"
	}
	defer func() {
		sys.Exit(1) // want "вызов os.Exit в функции main запрещён"
	}()
	helper()
}

func helper() {
	os.Exit(0)
}
