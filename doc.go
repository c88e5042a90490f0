// Package getconfig loads layered configuration files and resolves environment
// and self-referencing placeholders.
//
// Quick Start:
//
//	src, err := sourcefile.Discover(getconfig.OSEnv, "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := getconfig.NewLoader().
//	    WithSource(src).
//	    Load(context.Background())
//
// Layers, in merge order: default, all, $GETCONFIG_ENV (or dev, devel, develop,
// development when unset), local. Missing layers are skipped; if none exist
// Load fails with *FileNotFoundError.
//
// Placeholders in string values:
//
//	$NAME                 optional; key removed when NAME is unset
//	$$NAME                required; *UnsetEnvVarError when unset
//	$NAME::number         coerced with a registered type
//	$NAME::array:number   type with ":"-separated arguments
//	"a ${NAME} b"         interpolation; *UnsetEnvVarError when unset
//	${self.path.to.key}   copy of another resolved value
//
// Built-in types: array, boolean, date, number, object, regex. Add more with
// Registry.Register.
package getconfig
