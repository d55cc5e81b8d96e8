// Package mergeconf aggregates configuration values from an ordered list of
// heterogeneous sources (in-memory maps, environment variables, config files,
// command-line arguments, user-defined sources) and merges them into a single
// immutable result, one value per declared configuration item.
//
// Each item is declared up front with a name, an optional type converter, an
// optional default or required flag, and an action that decides how values
// contributed by several sources collapse into one final value. Built-in
// actions: store (later sources win), store_const/store_true/store_false
// (presence selects a constant), append and extend (accumulate across
// sources), and count (occurrences across sources).
//
// Quick Start:
//
//	parser := mergeconf.New()
//	parser.AddItem("host", mergeconf.WithDefault("localhost"))
//	parser.AddItem("port", mergeconf.WithType(mergeconf.Int))
//	parser.AddItem("verbose", mergeconf.WithAction("count"))
//
//	parser.AddSource(mergeconf.NewFileSource("app.toml"))
//	parser.AddSource(mergeconf.NewEnvSource(mergeconf.EnvPrefix("MYAPP_")))
//	parser.AddSource(mergeconf.NewFlagSource(os.Args[1:]))
//
//	ns, err := parser.Parse()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	host, _ := ns.String("host")
//	port, _ := ns.Int64("port")
//
// Precedence: for single-value actions the last contributing source wins, so
// sources registered later override earlier ones. An explicit priority can be
// attached to a source with SourcePriority; equal priorities preserve
// registration order.
//
// Sources are unaware of each other and of the parser. Anything implementing
// the Source interface can be registered, and anything implementing the
// Action interface can be used as a custom combination policy.
//
// Parse is atomic: it either returns a fully populated Namespace or an error
// and no result. Registration and parsing are not designed to interleave; the
// parser snapshots its registry at the start of each Parse call.
package mergeconf
