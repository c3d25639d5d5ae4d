package main

import (
	"flag"
	"log"

	"github.com/evilmidget38/KittehIRCBot/internal/config"
)

func main() {
	output := flag.String("output", "cmd/kittehbot/config.toml", "output path for the config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "cmd/kittehbot/config.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite an existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.LoadBotConfig(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated bot config at %s", *input)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote bot config template to %s", *output)
}
