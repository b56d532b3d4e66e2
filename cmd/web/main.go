package main

import "dealflow_backend/internal/app"

func main() {
	app.Run()
}
