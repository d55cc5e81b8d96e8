package main

import (
	"fmt"
	"log"
	"os"

	"mergeconf"
)

// AppConfig is the typed target the parsed namespace is scanned into.
type AppConfig struct {
	Host      string `config:"host"`
	Port      int64  `config:"port"`
	Debug     bool   `config:"debug"`
	Verbosity int    `config:"verbosity"`
	Tags      []any  `config:"tags"`
	LogLevel  string `config:"log_level"`
}

const configFilePath = "app.toml"

func main() {
	log.Println("---")
	log.Println("PART 1: Creating initial configuration file...")

	defer func() {
		os.Remove(configFilePath)
		os.Unsetenv("APP_PORT")
	}()

	fileContent := []byte("host = \"config-file-host\"\nport = 8080\nlog_level = \"info\"\ntags = [\"file-a\", \"file-b\"]\n")
	if err := os.WriteFile(configFilePath, fileContent, 0644); err != nil {
		log.Fatalf("failed to write %s: %v", configFilePath, err)
	}
	log.Printf("Initial configuration saved to %s.", configFilePath)

	log.Println("---")
	log.Println("PART 2: Parsing with file, environment, and command-line sources...")

	// Environment overrides the file, command line overrides both.
	os.Setenv("APP_PORT", "8888")
	args := []string{"--host", "cli-host", "--debug", "--verbosity", "--verbosity", "--tags", "cli-c"}

	validator := func(ns *mergeconf.Namespace) error {
		port, err := ns.Int64("port")
		if err != nil {
			return err
		}
		if port < 1024 || port > 65535 {
			return fmt.Errorf("port %d is outside the recommended range (1024-65535)", port)
		}
		return nil
	}

	ns, err := mergeconf.NewBuilder().
		AddItem("host", mergeconf.Required()).
		AddItem("port", mergeconf.WithDefault(int64(80)), mergeconf.WithType(mergeconf.Int64)).
		AddItem("debug", mergeconf.WithAction("store_true")).
		AddItem("verbosity", mergeconf.WithAction("count"), mergeconf.WithDefault(0)).
		AddItem("tags", mergeconf.WithAction("append")).
		AddItem("log_level",
			mergeconf.WithDefault("warn"),
			mergeconf.WithChoices("debug", "info", "warn", "error")).
		AddSource(mergeconf.NewFileSource(configFilePath)).
		AddSource(mergeconf.NewEnvSource(mergeconf.EnvPrefix("APP_"))).
		AddSource(mergeconf.NewFlagSource(args)).
		WithValidator(validator).
		Build()
	if err != nil {
		log.Fatalf("config build failed: %v", err)
	}

	log.Println("Parse finished; merged values:")
	for _, name := range ns.Names() {
		v, _ := ns.Get(name)
		log.Printf("  %-10s = %v", name, v)
	}

	log.Println("---")
	log.Println("PART 3: Scanning into a typed struct...")

	var app AppConfig
	if err := ns.Scan(&app); err != nil {
		log.Fatalf("scan failed: %v", err)
	}
	fmt.Printf("host=%s port=%d debug=%v verbosity=%d tags=%v log_level=%s\n",
		app.Host, app.Port, app.Debug, app.Verbosity, app.Tags, app.LogLevel)
}
