package main

import (
	"log"

	"github.com/rohanthewiz/rweb"

	"diffview/config"
	"diffview/db"
	"diffview/web"
)

func main() {
	config.Initialize()

	// Connect the database and run migrations up front
	database, err := db.GetDB()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	web.InitDiffService()
	web.InitDiffBroadcaster()

	// Create a new rweb server with options
	s := rweb.NewServer(rweb.ServerOptions{
		Address: config.Get().Address,
		Verbose: true,
	})

	// Add middleware for request logging
	s.Use(rweb.RequestInfo)

	// Setup routes
	web.SetupRoutes(s)

	// Start the server
	log.Printf("Starting diffview server on %s", config.Get().Address)
	log.Fatal(s.Run())
}
