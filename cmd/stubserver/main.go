package main

import "github.com/eleven-am/asr-stream/internal/bootstrap"

func main() {
	bootstrap.Run()
}
