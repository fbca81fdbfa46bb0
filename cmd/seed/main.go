// Command seed runs the database seeder for Memberbase.
package main

import (
	"flag"
	"log"

	"memberbase/internal/config"
	"memberbase/internal/database"
	"memberbase/internal/seed"
)

func main() {
	numOrgs := flag.Int("orgs", 3, "Number of organizations to create")
	membersPerOrg := flag.Int("members", 15, "Number of members per organization")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d organizations, %d members each, clean=%v\n",
		*numOrgs, *membersPerOrg, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumOrganizations: *numOrgs,
		MembersPerOrg:    *membersPerOrg,
		ShouldClean:      *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
