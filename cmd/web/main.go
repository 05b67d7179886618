// @title           Procura API
// @version         1.0
// @description     Procurement portal backed by the SECOP II open data feed: tender registry, bid lifecycle and notifications.
// @host            localhost:4000
// @BasePath        /

package main

import "procura_backend/internal/app"

func main() {
	app.Run()
}
