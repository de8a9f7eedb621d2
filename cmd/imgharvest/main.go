package main

import (
	// WEBP output
	_ "imgharvest/pkg/imageproc/webp"
)

func main() {
	Execute()
}
