package main

import (
	"flag"
	"log"

	"github.com/studykit/studybot-backend/cmd"
)

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run database migrations")
	shouldRunServer := flag.Bool("server", false, "Run the webhook server")
	shouldRunWorker := flag.Bool("worker", false, "Run the task queue workers")
	shouldRunPoller := flag.Bool("poller", false, "Run the long polling bot with in-process workers")
	flag.Parse()

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}
	if *shouldRunServer {
		if err := cmd.RunServer(); err != nil {
			log.Fatal(err)
		}
	}
	if *shouldRunWorker {
		if err := cmd.RunTaskQueue(); err != nil {
			log.Fatal(err)
		}
	}
	if *shouldRunPoller {
		if err := cmd.RunPoller(); err != nil {
			log.Fatal(err)
		}
	}
}
