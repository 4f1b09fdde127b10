package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/logging"
	"github.com/overflowhosting/lockscreen/internal/server/api"
)

func main() {

	addr := flag.String("a", ":8080", "listen address")
	flag.Parse()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// the signing key is ephemeral; restarting the server invalidates
	// previously issued tokens
	s := api.NewServer(common.GenerateRandByteArray(32), time.Hour, logger)
	u := s.AddUser("Demo User", "demo@example.com", "demo1234")
	log.Printf("seeded user %s (password demo1234)", u.Email)

	log.Printf("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, s.Router()); err != nil {
		log.Fatalf("%v", err)
	}
}
