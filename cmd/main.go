package main

import (
	api "Conduit"
)

func main() {
	api.Run()
}
