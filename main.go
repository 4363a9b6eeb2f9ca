package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/wecode/proxyman/app"
	"github.com/wecode/proxyman/internal/updater"
	"github.com/wecode/proxyman/metrics"
	"github.com/wecode/proxyman/registry"
)

var version = "devel"

func main() {
	updatePtr := flag.Bool("update", false, "check for updates")
	pickPtr := flag.Bool("pick", false, "print one proxy URL and exit")
	listPtr := flag.Bool("list", false, "print all proxy URLs and exit")
	flag.Parse()

	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("cannot load .env")
	}

	switch {
	case *updatePtr:
		err = updater.AutoUpdate(version)
		if err != nil {
			log.Fatal().Err(err).Msg("update failed")
		}
	case *pickPtr:
		fmt.Println(registry.Pick().URL())
	case *listPtr:
		list(os.Stdout, registry.Default())
	default:
		fmt.Printf("proxyman v%s\n", version)
		app.Run(context.Background(), app.Factories{
			"metrics":  metrics.NewMetrics,
			"registry": registry.NewService,
		})
	}
}

func list(w io.Writer, r *registry.Registry) {
	for i, d := range r.Entries() {
		fmt.Fprintf(w, "%d\t%s\n", i, d.URL())
	}
}
