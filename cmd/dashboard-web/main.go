// Command dashboard-web serves the dashboard behind a small HTTP UI.
// Source tables are loaded once and cached; each request re-runs only
// the in-memory pipeline with the requested filters.
package main

import (
	"flag"
	"log"

	"ipldash/internal/config"
	"ipldash/internal/webui"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cfgPath := flag.String("config", "configs/sample.json", "dashboard config JSON path")
	flag.Parse()

	d, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if issues := config.Validate(d); config.HasErrors(issues) {
		for _, iss := range issues {
			log.Printf("%s: %s: %s", iss.Severity, iss.Path, iss.Message)
		}
		log.Fatalf("Configuration is invalid: %v", *cfgPath)
	}

	srv := webui.NewServer(webui.Config{Addr: *addr, Dash: d})
	log.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
