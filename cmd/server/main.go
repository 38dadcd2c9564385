package main

import "hireflow/internal/app/server"

func main() {
	server.Run()
}
