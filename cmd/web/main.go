package main

import "bizdir_backend/internal/app"

func main() {
	app.Run()
}
