package main

import "tradewizard_backend/internal/app"

func main() {
	app.Run()
}
