package main

import "github.com/df07/go-progressive-pathtracer/cmd"

func main() {
	cmd.Execute()
}
